package match

import (
	"context"
	"time"

	"gocv.io/x/gocv"

	"github.com/1ajie1/identification-tester/internal/logger"
)

// HybridMatcher 检测器 + 特征点混合匹配器
//
// 检测器提出候选区域收窄搜索空间并排除无关区域，
// 特征点匹配在候选区域内重建检测器给不出的几何精度；
// 无可用检测结果时按配置回退到全图特征点匹配。
type HybridMatcher struct {
	cfg      HybridConfig
	detector Detector
	feature  *FeatureMatcher
}

// NewHybridMatcher 创建混合匹配器
// detector 为 nil 时使用 DNN 检测器
func NewHybridMatcher(cfg HybridConfig, detector Detector) *HybridMatcher {
	if detector == nil {
		detector = NewDNNDetector()
	}
	return &HybridMatcher{
		cfg:      cfg,
		detector: detector,
		feature:  NewFeatureMatcher(cfg.Feature),
	}
}

// Match 在目标图像中查找模板
//
// 依检测器返回顺序逐个候选区域匹配（不重排序），
// 严格大于当前最佳置信度才替换，先到先得；
// 全部失败且开启回退时做全图特征点匹配。
func (h *HybridMatcher) Match(template, target gocv.Mat) (*MatchResult, error) {
	startTime := time.Now()

	if err := h.cfg.Validate(); err != nil {
		return nil, err
	}
	if template.Empty() || target.Empty() {
		return nil, ErrEmptyImage
	}

	detections, err := h.detector.Detect(target, h.cfg.Detector)
	if err != nil {
		return nil, err
	}

	var best *MatchResult
	for _, det := range detections {
		if det.Confidence < h.cfg.MinDetectorConfidence {
			continue
		}

		result, err := h.matchInROI(template, target, det)
		if err != nil {
			return nil, err
		}
		if result != nil && (best == nil || result.Confidence > best.Confidence) {
			best = result
		}
	}

	if best != nil {
		elapsed := float64(time.Since(startTime).Milliseconds())
		logger.LogEvent("HYB", true, elapsed, "候选区域匹配成功")
		return best, nil
	}

	// 回退到全图特征点匹配
	if h.cfg.FallbackEnabled {
		result, err := h.feature.Match(template, target)
		if err != nil {
			return nil, err
		}
		if result != nil {
			result.Method = MethodHybridFallback
			elapsed := float64(time.Since(startTime).Milliseconds())
			logger.LogEvent("HYB", true, elapsed, "回退匹配成功")
			return result, nil
		}
	}

	elapsed := float64(time.Since(startTime).Milliseconds())
	logger.LogEvent("HYB", false, elapsed, "未找到匹配")
	return nil, nil
}

// MatchWithRetry 按重试策略在活动目标上做混合匹配
func (h *HybridMatcher) MatchWithRetry(ctx context.Context, template gocv.Mat, capture func() (gocv.Mat, error)) (*MatchResult, error) {
	return h.cfg.Feature.Retry.Run(ctx, func() (*MatchResult, error) {
		target, err := capture()
		if err != nil {
			return nil, err
		}
		defer target.Close()
		return h.Match(template, target)
	})
}

// matchInROI 在单个检测框的扩展区域内做特征点匹配
// 匹配成功后把坐标映射回原图，并附带检测器置信度
func (h *HybridMatcher) matchInROI(template, target gocv.Mat, det Detection) (*MatchResult, error) {
	roi := h.expandROI(det.Box, target.Cols(), target.Rows())
	if roi.Width <= 0 || roi.Height <= 0 {
		return nil, nil
	}

	cropped := CropRect(target, roi)
	defer cropped.Close()

	result, err := h.feature.Match(template, cropped)
	if err != nil || result == nil {
		return nil, err
	}

	// 候选区域坐标映射回原图坐标系
	if result.Box != nil {
		result.Box.Left += roi.Left
		result.Box.Top += roi.Top
	}
	if result.Center != nil {
		result.Center.X += roi.Left
		result.Center.Y += roi.Top
	}

	result.Method = MethodHybrid
	result.Diagnostics.DetectorConfidence = det.Confidence
	return result, nil
}

// expandROI 按比例向四周扩展检测框并收敛到图像范围内
func (h *HybridMatcher) expandROI(box Rect, width, height int) Rect {
	expandW := int(float64(box.Width) * h.cfg.ROIExpansion)
	expandH := int(float64(box.Height) * h.cfg.ROIExpansion)

	return clampRect(Rect{
		Left:   box.Left - expandW,
		Top:    box.Top - expandH,
		Width:  box.Width + 2*expandW,
		Height: box.Height + 2*expandH,
	}, width, height)
}
