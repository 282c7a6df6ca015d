package match

import (
	"image"
	"image/color"
	"math/rand"

	"gocv.io/x/gocv"
)

// newNoiseMat 生成带随机噪声的 RGB 图像
// 噪声图富含角点，适合特征点和模板匹配测试；seed 固定保证可重复
func newNoiseMat(width, height int, seed int64) gocv.Mat {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		panic(err)
	}
	return mat
}

// newSolidMat 生成纯色图像
func newSolidMat(width, height int, c color.RGBA) gocv.Mat {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		panic(err)
	}
	return mat
}

// plantPatch 将小图拷贝到大图的指定位置
func plantPatch(target *gocv.Mat, patch gocv.Mat, x, y int) {
	roi := target.Region(image.Rect(x, y, x+patch.Cols(), y+patch.Rows()))
	defer roi.Close()
	patch.CopyTo(&roi)
}

// absInt 绝对值
func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
