package match

import (
	"context"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"

	"github.com/1ajie1/identification-tester/internal/logger"
)

// CorrelationMatcher 相关性模板匹配器
// 只持有配置，不持有跨调用状态
type CorrelationMatcher struct {
	cfg CorrelationConfig
}

// NewCorrelationMatcher 创建相关性模板匹配器
func NewCorrelationMatcher(cfg CorrelationConfig) *CorrelationMatcher {
	return &CorrelationMatcher{cfg: cfg}
}

// Match 在目标图像中查找模板的最佳匹配
// 模板尺寸大于目标时返回 (nil, nil)，不报错
func (c *CorrelationMatcher) Match(template, target gocv.Mat) (*MatchResult, error) {
	startTime := time.Now()

	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	if template.Empty() || target.Empty() {
		return nil, ErrEmptyImage
	}

	templateGray := ToGray(template)
	targetGray := ToGray(target)
	defer templateGray.Close()
	defer targetGray.Close()

	var best *MatchResult
	for _, scale := range c.scales() {
		result := c.matchAtScale(templateGray, targetGray, scale)
		if result == nil {
			continue
		}
		// 严格大于才替换，先到先得
		if best == nil || result.Confidence > best.Confidence {
			best = result
		}
	}

	elapsed := float64(time.Since(startTime).Milliseconds())
	if best == nil || best.Confidence < c.cfg.Threshold {
		logger.LogEvent("TPL", false, elapsed, "未找到匹配")
		return nil, nil
	}

	logger.LogEvent("TPL", true, elapsed, "匹配成功")
	return best, nil
}

// MatchWithRetry 按重试策略在活动目标上查找模板
// capture 每次尝试重新提供目标图像（如屏幕截图）
func (c *CorrelationMatcher) MatchWithRetry(ctx context.Context, template gocv.Mat, capture func() (gocv.Mat, error)) (*MatchResult, error) {
	return c.cfg.Retry.Run(ctx, func() (*MatchResult, error) {
		target, err := capture()
		if err != nil {
			return nil, err
		}
		defer target.Close()
		return c.Match(template, target)
	})
}

// FindAll 查找最多 maxMatches 个互不重叠的匹配
// 按置信度降序贪心选取，抑制已接受匹配半个模板尺寸内的候选
func (c *CorrelationMatcher) FindAll(template, target gocv.Mat, maxMatches int) ([]*MatchResult, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	if template.Empty() || target.Empty() {
		return nil, ErrEmptyImage
	}
	if err := checkTemplateFits(target, template); err != nil {
		return nil, nil
	}
	if maxMatches <= 0 {
		return nil, nil
	}

	templateGray := ToGray(template)
	targetGray := ToGray(target)
	defer templateGray.Close()
	defer targetGray.Close()

	scoreMap, err := c.confidenceMap(templateGray, targetGray)
	if err != nil {
		return nil, err
	}
	defer scoreMap.Close()

	w, h := template.Cols(), template.Rows()
	var results []*MatchResult

	for len(results) < maxMatches {
		_, maxVal, _, maxLoc := gocv.MinMaxLoc(scoreMap)

		confidence := float64(maxVal)
		if confidence < c.cfg.Threshold {
			break
		}

		results = append(results, c.buildResult(maxLoc.X, maxLoc.Y, w, h, confidence, 1.0))

		// 屏蔽已接受位置周围半个模板尺寸的候选区域
		gocv.Rectangle(&scoreMap,
			image.Rect(maxLoc.X-w/2, maxLoc.Y-h/2, maxLoc.X+w/2+1, maxLoc.Y+h/2+1),
			color.RGBA{0, 0, 0, 255}, -1)
	}

	return results, nil
}

// scales 生成要评估的缩放比例序列
func (c *CorrelationMatcher) scales() []float64 {
	if c.cfg.ScaleSteps <= 1 {
		return []float64{1.0}
	}
	return linspace(c.cfg.ScaleMin, c.cfg.ScaleMax, c.cfg.ScaleSteps)
}

// matchAtScale 在单个缩放比例下匹配
// 该比例下模板超出目标尺寸时跳过
func (c *CorrelationMatcher) matchAtScale(template, target gocv.Mat, scale float64) *MatchResult {
	scaled := template
	if scale != 1.0 {
		scaled = ScaleImage(template, scale)
		defer scaled.Close()
	}

	if checkTemplateFits(target, scaled) != nil {
		return nil
	}

	mode, _ := c.cfg.Method.templateMode()

	result := gocv.NewMat()
	defer result.Close()
	gocv.MatchTemplate(target, scaled, &result, mode, gocv.NewMat())

	minVal, maxVal, minLoc, maxLoc := gocv.MinMaxLoc(result)

	// 平方差取最小值位置并换算为越大越好
	var confidence, matchVal float64
	var loc image.Point
	if c.cfg.Method.lowerIsBetter() {
		matchVal = float64(minVal)
		confidence = 1 - matchVal
		loc = minLoc
	} else {
		matchVal = float64(maxVal)
		confidence = matchVal
		loc = maxLoc
	}

	r := c.buildResult(loc.X, loc.Y, scaled.Cols(), scaled.Rows(), confidence, scale)
	r.Diagnostics.MatchValue = matchVal
	return r
}

// confidenceMap 计算整图置信度矩阵（统一为越大越好）
func (c *CorrelationMatcher) confidenceMap(template, target gocv.Mat) (gocv.Mat, error) {
	mode, err := c.cfg.Method.templateMode()
	if err != nil {
		return gocv.Mat{}, err
	}

	result := gocv.NewMat()
	gocv.MatchTemplate(target, template, &result, mode, gocv.NewMat())

	if c.cfg.Method.lowerIsBetter() {
		result.MultiplyFloat(-1)
		result.AddFloat(1)
	}
	return result, nil
}

// buildResult 构建匹配结果
func (c *CorrelationMatcher) buildResult(x, y, w, h int, confidence, scale float64) *MatchResult {
	box := Rect{Left: x, Top: y, Width: w, Height: h}
	center := box.Center()
	return &MatchResult{
		Confidence: confidence,
		Box:        &box,
		Center:     &center,
		Method:     MethodTemplate,
		Diagnostics: Diagnostics{
			Scale: scale,
		},
	}
}
