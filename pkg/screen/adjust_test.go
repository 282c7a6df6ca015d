package screen

import (
	"testing"

	"github.com/1ajie1/identification-tester/pkg/match"
)

func TestAdjustMatchResult_HighDPI(t *testing.T) {
	// 2 倍缩放截图：截图像素坐标是逻辑坐标的 2 倍
	meta := CaptureMeta{ScaleX: 2.0, ScaleY: 2.0}

	box := match.Rect{Left: 400, Top: 300, Width: 160, Height: 120}
	center := box.Center()
	result := &match.MatchResult{
		Confidence: 0.95,
		Box:        &box,
		Center:     &center,
	}

	adjusted := AdjustMatchResult(result, meta)
	if adjusted.Box.Left != 200 || adjusted.Box.Top != 150 {
		t.Errorf("位置换算错误: (%d,%d), 期望 (200,150)", adjusted.Box.Left, adjusted.Box.Top)
	}
	if adjusted.Box.Width != 80 || adjusted.Box.Height != 60 {
		t.Errorf("尺寸换算错误: %dx%d", adjusted.Box.Width, adjusted.Box.Height)
	}
	if adjusted.Center.X != 240 || adjusted.Center.Y != 180 {
		t.Errorf("中心换算错误: (%d,%d)", adjusted.Center.X, adjusted.Center.Y)
	}

	// 原结果不应被修改
	if result.Box.Left != 400 {
		t.Error("原结果不应被修改")
	}
}

func TestAdjustMatchResult_RegionOffset(t *testing.T) {
	meta := CaptureMeta{ScaleX: 1.0, ScaleY: 1.0, OffsetX: 100, OffsetY: 50}

	box := match.Rect{Left: 30, Top: 20, Width: 40, Height: 40}
	center := box.Center()
	result := &match.MatchResult{Box: &box, Center: &center}

	adjusted := AdjustMatchResult(result, meta)
	if adjusted.Box.Left != 130 || adjusted.Box.Top != 70 {
		t.Errorf("区域偏移未生效: (%d,%d)", adjusted.Box.Left, adjusted.Box.Top)
	}
	if adjusted.Center.X != 150 || adjusted.Center.Y != 90 {
		t.Errorf("中心偏移错误: (%d,%d)", adjusted.Center.X, adjusted.Center.Y)
	}
}

func TestAdjustMatchResult_Nil(t *testing.T) {
	if got := AdjustMatchResult(nil, CaptureMeta{ScaleX: 1, ScaleY: 1}); got != nil {
		t.Error("nil 结果应原样返回")
	}
}

func TestAdjustMatchResult_NoBox(t *testing.T) {
	// 几何估计失败的结果只有置信度
	result := &match.MatchResult{Confidence: 0.6}
	adjusted := AdjustMatchResult(result, CaptureMeta{ScaleX: 2, ScaleY: 2})

	if adjusted.Box != nil || adjusted.Center != nil {
		t.Error("无定位框的结果调整后也应无定位框")
	}
	if adjusted.Confidence != 0.6 {
		t.Error("置信度应保留")
	}
}

func TestAdjustPoint_InvalidScale(t *testing.T) {
	// 非法缩放比时坐标原样返回
	p := AdjustPoint(match.Point{X: 100, Y: 80}, CaptureMeta{ScaleX: 0, ScaleY: -1})
	if p.X != 100 || p.Y != 80 {
		t.Errorf("非法缩放比应保持坐标不变: (%d,%d)", p.X, p.Y)
	}
}
