// Package screen 提供屏幕截图以及截图坐标与屏幕坐标的换算
package screen

import (
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
	"gocv.io/x/gocv"
)

// Region 屏幕区域（逻辑坐标）
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CaptureMeta 截图元信息
// 记录截图像素与屏幕逻辑坐标之间的缩放和偏移，
// 高 DPI 环境下截图分辨率可能大于逻辑屏幕尺寸
type CaptureMeta struct {
	ScaleX  float64
	ScaleY  float64
	OffsetX int
	OffsetY int
}

// CaptureScreen 截取全屏
func CaptureScreen() (image.Image, error) {
	img, err := robotgo.CaptureImg()
	if err != nil {
		return nil, fmt.Errorf("截屏失败: %w", err)
	}
	return img, nil
}

// CaptureRegion 截取屏幕区域
func CaptureRegion(r Region) (image.Image, error) {
	img, err := robotgo.CaptureImg(r.X, r.Y, r.Width, r.Height)
	if err != nil {
		return nil, fmt.Errorf("截取区域失败: %w", err)
	}
	return img, nil
}

// CaptureMat 截图用于匹配，返回 gocv.Mat 和坐标换算元信息
// region 为 nil 时截取全屏
func CaptureMat(region *Region) (gocv.Mat, CaptureMeta, error) {
	var img image.Image
	var err error

	if region != nil {
		img, err = CaptureRegion(*region)
	} else {
		img, err = CaptureScreen()
	}
	if err != nil {
		return gocv.Mat{}, CaptureMeta{}, err
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, CaptureMeta{}, fmt.Errorf("转换图像失败: %w", err)
	}

	return mat, buildCaptureMeta(region, img), nil
}

// buildCaptureMeta 对比截图实际尺寸和期望尺寸推算缩放比
// 缩放比在高 DPI 屏幕上大于 1，其余场景为 1
func buildCaptureMeta(region *Region, img image.Image) CaptureMeta {
	bounds := img.Bounds()
	imgW := bounds.Dx()
	imgH := bounds.Dy()

	expectedW, expectedH := GetScreenSize()
	offsetX, offsetY := 0, 0
	if region != nil {
		expectedW = region.Width
		expectedH = region.Height
		offsetX = region.X
		offsetY = region.Y
	}

	scaleX := 1.0
	if expectedW > 0 && imgW > 0 {
		scaleX = float64(imgW) / float64(expectedW)
	}
	scaleY := 1.0
	if expectedH > 0 && imgH > 0 {
		scaleY = float64(imgH) / float64(expectedH)
	}

	return CaptureMeta{
		ScaleX:  scaleX,
		ScaleY:  scaleY,
		OffsetX: offsetX,
		OffsetY: offsetY,
	}
}

// GetScreenSize 获取主屏幕逻辑尺寸
func GetScreenSize() (width, height int) {
	return robotgo.GetScreenSize()
}

// GetDisplayCount 获取显示器数量
func GetDisplayCount() int {
	return robotgo.DisplaysNum()
}
