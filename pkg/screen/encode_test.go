package screen

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 10), B: 128, A: 255})
		}
	}
	return img
}

func TestImageToBase64_JPEG(t *testing.T) {
	s, err := ImageToBase64(testImage(), "", 0)
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	if !strings.HasPrefix(s, "data:image/jpeg;base64,") {
		t.Errorf("默认应为 JPEG data URI: %.40s...", s)
	}
}

func TestImageToBase64_PNG(t *testing.T) {
	s, err := ImageToBase64(testImage(), "png", 80)
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	if !strings.HasPrefix(s, "data:image/png;base64,") {
		t.Errorf("应为 PNG data URI: %.40s...", s)
	}
}

func TestImageToBase64_Invalid(t *testing.T) {
	if _, err := ImageToBase64(nil, "jpeg", 80); err == nil {
		t.Error("空图像应报错")
	}
	if _, err := ImageToBase64(testImage(), "bmp", 80); err == nil {
		t.Error("不支持的格式应报错")
	}
}
