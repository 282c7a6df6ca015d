package match

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ReadImage 读取图像文件
func ReadImage(filename string) (gocv.Mat, error) {
	mat := gocv.IMRead(filename, gocv.IMReadColor)
	if mat.Empty() {
		return mat, fmt.Errorf("无法读取图像: %s", filename)
	}
	return mat, nil
}

// WriteImage 保存图像文件
func WriteImage(filename string, img gocv.Mat) error {
	if ok := gocv.IMWrite(filename, img); !ok {
		return fmt.Errorf("保存图像失败: %s", filename)
	}
	return nil
}

// ToGray 转换为灰度图
func ToGray(src gocv.Mat) gocv.Mat {
	if src.Channels() == 1 {
		return src.Clone()
	}
	dst := gocv.NewMat()
	gocv.CvtColor(src, &dst, gocv.ColorBGRToGray)
	return dst
}

// CropRect 裁剪图像区域（边界自动收敛到图像范围内）
func CropRect(img gocv.Mat, r Rect) gocv.Mat {
	xMin := max(r.Left, 0)
	yMin := max(r.Top, 0)
	xMax := min(r.Right(), img.Cols())
	yMax := min(r.Bottom(), img.Rows())

	region := img.Region(image.Rect(xMin, yMin, xMax, yMax))
	defer region.Close()
	return region.Clone()
}

// ResizeImage 调整图像大小
// 缩小时使用面积插值，放大时使用三次插值
func ResizeImage(img gocv.Mat, width, height int) gocv.Mat {
	interp := gocv.InterpolationCubic
	if width < img.Cols() || height < img.Rows() {
		interp = gocv.InterpolationArea
	}

	dst := gocv.NewMat()
	gocv.Resize(img, &dst, image.Point{X: width, Y: height}, 0, 0, interp)
	return dst
}

// ScaleImage 按比例缩放图像
func ScaleImage(img gocv.Mat, scale float64) gocv.Mat {
	newW := max(1, int(float64(img.Cols())*scale))
	newH := max(1, int(float64(img.Rows())*scale))
	return ResizeImage(img, newW, newH)
}

// ImageToMat 将 image.Image 转换为 gocv.Mat (BGR)
func ImageToMat(img image.Image) (gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("图像转换失败: %w", err)
	}
	dst := gocv.NewMat()
	gocv.CvtColor(mat, &dst, gocv.ColorRGBToBGR)
	mat.Close()
	return dst, nil
}

// LoadImageInput 加载图像输入
// 支持 string (文件路径)、image.Image、gocv.Mat
func LoadImageInput(input interface{}) (gocv.Mat, error) {
	switch v := input.(type) {
	case string:
		return ReadImage(v)
	case image.Image:
		return ImageToMat(v)
	case gocv.Mat:
		return v.Clone(), nil
	case *gocv.Mat:
		return v.Clone(), nil
	default:
		return gocv.Mat{}, fmt.Errorf("不支持的图像输入类型: %T", input)
	}
}

// checkTemplateFits 检查模板是否不大于目标图像
func checkTemplateFits(target, template gocv.Mat) error {
	if target.Empty() || template.Empty() {
		return ErrEmptyImage
	}
	if template.Rows() > target.Rows() || template.Cols() > target.Cols() {
		return &ImageSizeError{
			TargetSize:   [2]int{target.Cols(), target.Rows()},
			TemplateSize: [2]int{template.Cols(), template.Rows()},
		}
	}
	return nil
}

// linspace 生成 [lo, hi] 之间 n 个等间隔数值
func linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	return out
}

// clampRect 将矩形收敛到图像范围内
func clampRect(r Rect, width, height int) Rect {
	left := max(r.Left, 0)
	top := max(r.Top, 0)
	right := min(r.Right(), width)
	bottom := min(r.Bottom(), height)

	return Rect{
		Left:   left,
		Top:    top,
		Width:  max(right-left, 0),
		Height: max(bottom-top, 0),
	}
}
