package match

import (
	"math"
	"testing"
)

func TestClampRect(t *testing.T) {
	cases := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"完全在范围内", Rect{10, 10, 50, 50}, Rect{10, 10, 50, 50}},
		{"左上越界", Rect{-20, -10, 50, 50}, Rect{0, 0, 30, 40}},
		{"右下越界", Rect{80, 80, 50, 50}, Rect{80, 80, 20, 20}},
		{"完全越界", Rect{200, 200, 50, 50}, Rect{200, 200, 0, 0}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := clampRect(c.in, 100, 100)
			if got != c.want {
				t.Errorf("clampRect(%+v) = %+v, 期望 %+v", c.in, got, c.want)
			}
		})
	}
}

func TestLinspace(t *testing.T) {
	got := linspace(0.8, 1.2, 5)
	want := []float64{0.8, 0.9, 1.0, 1.1, 1.2}

	if len(got) != len(want) {
		t.Fatalf("长度错误: %d", len(got))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("linspace[%d] = %v, 期望 %v", i, got[i], want[i])
		}
	}

	if got := linspace(0.5, 2.0, 1); len(got) != 1 || got[0] != 0.5 {
		t.Errorf("单步时应返回下限: %v", got)
	}
}

func TestRectCenter(t *testing.T) {
	r := Rect{Left: 100, Top: 50, Width: 64, Height: 64}
	center := r.Center()
	if center.X != 132 || center.Y != 82 {
		t.Errorf("中心点错误: (%d,%d)", center.X, center.Y)
	}
	if r.Right() != 164 || r.Bottom() != 114 {
		t.Errorf("边界错误: right=%d, bottom=%d", r.Right(), r.Bottom())
	}
}

func TestCropRect_ClampsToBounds(t *testing.T) {
	img := newNoiseMat(100, 80, 61)
	defer img.Close()

	cropped := CropRect(img, Rect{Left: 80, Top: 60, Width: 50, Height: 50})
	defer cropped.Close()

	if cropped.Cols() != 20 || cropped.Rows() != 20 {
		t.Errorf("裁剪应收敛到图像范围: %dx%d", cropped.Cols(), cropped.Rows())
	}
}

func TestScaleImage(t *testing.T) {
	img := newNoiseMat(100, 80, 62)
	defer img.Close()

	scaled := ScaleImage(img, 0.5)
	defer scaled.Close()
	if scaled.Cols() != 50 || scaled.Rows() != 40 {
		t.Errorf("缩小后尺寸错误: %dx%d", scaled.Cols(), scaled.Rows())
	}

	enlarged := ScaleImage(img, 2.0)
	defer enlarged.Close()
	if enlarged.Cols() != 200 || enlarged.Rows() != 160 {
		t.Errorf("放大后尺寸错误: %dx%d", enlarged.Cols(), enlarged.Rows())
	}
}

func TestLoadImageInput_UnsupportedType(t *testing.T) {
	if _, err := LoadImageInput(42); err == nil {
		t.Error("不支持的输入类型应报错")
	}
}

func TestToGray(t *testing.T) {
	img := newNoiseMat(64, 48, 63)
	defer img.Close()

	gray := ToGray(img)
	defer gray.Close()
	if gray.Channels() != 1 {
		t.Errorf("灰度图应为单通道: %d", gray.Channels())
	}

	// 已是灰度图时返回副本
	gray2 := ToGray(gray)
	defer gray2.Close()
	if gray2.Channels() != 1 {
		t.Errorf("灰度图转换应保持单通道: %d", gray2.Channels())
	}
}
