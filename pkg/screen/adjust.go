package screen

import (
	"math"

	"github.com/1ajie1/identification-tester/pkg/match"
)

// AdjustMatchResult 将匹配结果从截图像素坐标换算到屏幕逻辑坐标
// 返回调整后的副本，原结果不变；result 为 nil 时返回 nil
func AdjustMatchResult(result *match.MatchResult, meta CaptureMeta) *match.MatchResult {
	if result == nil {
		return nil
	}

	adjusted := *result
	if result.Box != nil {
		box := match.Rect{
			Left:   scaleCoord(result.Box.Left, meta.ScaleX) + meta.OffsetX,
			Top:    scaleCoord(result.Box.Top, meta.ScaleY) + meta.OffsetY,
			Width:  scaleCoord(result.Box.Width, meta.ScaleX),
			Height: scaleCoord(result.Box.Height, meta.ScaleY),
		}
		adjusted.Box = &box
	}
	if result.Center != nil {
		center := AdjustPoint(*result.Center, meta)
		adjusted.Center = &center
	}

	return &adjusted
}

// AdjustPoint 将点坐标从截图像素坐标换算到屏幕逻辑坐标
func AdjustPoint(p match.Point, meta CaptureMeta) match.Point {
	return match.Point{
		X: scaleCoord(p.X, meta.ScaleX) + meta.OffsetX,
		Y: scaleCoord(p.Y, meta.ScaleY) + meta.OffsetY,
	}
}

// scaleCoord 按缩放比反向换算坐标
func scaleCoord(value int, scale float64) int {
	if scale <= 0 {
		return value
	}
	return int(math.Round(float64(value) / scale))
}
