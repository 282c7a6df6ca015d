// Package overlay 在图像上绘制匹配和检测结果，用于调试和结果留存
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"gocv.io/x/gocv"
	"golang.org/x/image/font"

	"github.com/1ajie1/identification-tester/pkg/match"
)

// 默认绘制样式
var (
	boxColor       = color.RGBA{0, 255, 0, 255}
	centerColor    = color.RGBA{0, 0, 255, 255}
	detectionColor = color.RGBA{255, 165, 0, 255}
	labelColor     = color.RGBA{0, 255, 0, 255}
)

// DrawMatchResult 在目标图像副本上绘制匹配框、中心点和置信度标签
// result 为 nil 或没有定位框时返回原图副本
func DrawMatchResult(target gocv.Mat, result *match.MatchResult) gocv.Mat {
	canvas := target.Clone()
	if result == nil || result.Box == nil {
		return canvas
	}

	box := result.Box
	gocv.Rectangle(&canvas,
		image.Rect(box.Left, box.Top, box.Right(), box.Bottom()),
		boxColor, 2)

	if result.Center != nil {
		gocv.Circle(&canvas, image.Point{X: result.Center.X, Y: result.Center.Y}, 5, centerColor, -1)
	}

	label := fmt.Sprintf("%s %.3f", result.Method, result.Confidence)
	labelY := box.Top - 8
	if labelY < 12 {
		labelY = box.Bottom() + 16
	}
	gocv.PutText(&canvas, label, image.Point{X: box.Left, Y: labelY},
		gocv.FontHersheySimplex, 0.5, labelColor, 1)

	return canvas
}

// DrawDetections 在目标图像副本上绘制检测框和类别标签
func DrawDetections(target gocv.Mat, detections []match.Detection) gocv.Mat {
	canvas := target.Clone()
	for _, det := range detections {
		gocv.Rectangle(&canvas,
			image.Rect(det.Box.Left, det.Box.Top, det.Box.Right(), det.Box.Bottom()),
			detectionColor, 2)

		label := fmt.Sprintf("%s %.2f", det.ClassName, det.Confidence)
		labelY := det.Box.Top - 8
		if labelY < 12 {
			labelY = det.Box.Bottom() + 16
		}
		gocv.PutText(&canvas, label, image.Point{X: det.Box.Left, Y: labelY},
			gocv.FontHersheySimplex, 0.5, detectionColor, 1)
	}
	return canvas
}

// SaveMatchResult 绘制匹配结果并保存到文件
func SaveMatchResult(target gocv.Mat, result *match.MatchResult, path string) error {
	canvas := DrawMatchResult(target, result)
	defer canvas.Close()
	return match.WriteImage(path, canvas)
}

// 全局标签字体（延迟加载，加载失败时标签回退到 PutText）
var labelFont *truetype.Font

// loadLabelFont 按常见系统路径加载 TTF 字体
// gocv.PutText 不支持中文，中文标签需要 freetype 渲染
func loadLabelFont() *truetype.Font {
	if labelFont != nil {
		return labelFont
	}

	fontPaths := []string{
		"/System/Library/Fonts/STHeiti Medium.ttc",
		"/System/Library/Fonts/PingFang.ttc",
		"/Library/Fonts/Arial Unicode.ttf",
		"C:\\Windows\\Fonts\\msyh.ttc",
		"C:\\Windows\\Fonts\\simhei.ttf",
		"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
		"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	}

	for _, path := range fontPaths {
		fontBytes, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		f, err := truetype.Parse(fontBytes)
		if err != nil {
			continue
		}
		labelFont = f
		return f
	}
	return nil
}

// DrawTextLabel 在图像上绘制任意文本标签（支持中文）
// 字体加载失败时回退到 gocv.PutText（仅 ASCII 可见）
func DrawTextLabel(canvas *gocv.Mat, text string, x, y int, fontSize float64) {
	f := loadLabelFont()
	if f == nil {
		gocv.PutText(canvas, text, image.Point{X: x, Y: y},
			gocv.FontHersheySimplex, 0.5, labelColor, 1)
		return
	}

	img, err := canvas.ToImage()
	if err != nil {
		return
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(f)
	c.SetFontSize(fontSize)
	c.SetClip(rgba.Bounds())
	c.SetDst(rgba)
	c.SetSrc(image.NewUniform(labelColor))
	c.SetHinting(font.HintingFull)

	pt := freetype.Pt(x, y+int(c.PointToFixed(fontSize)>>6))
	if _, err := c.DrawString(text, pt); err != nil {
		return
	}

	rendered, err := gocv.ImageToMatRGB(rgba)
	if err != nil {
		return
	}
	defer rendered.Close()
	rendered.CopyTo(canvas)
}
