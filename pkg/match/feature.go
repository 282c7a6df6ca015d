package match

import (
	"context"
	"image"
	"math"
	"time"

	"gocv.io/x/gocv"

	"github.com/1ajie1/identification-tester/internal/logger"
)

const (
	// 低对比度图像的标准差下限，低于该值先做对比度增强
	lowContrastStdDev = 10.0
	// 估计单应性矩阵所需的最少对应点数
	minHomographyPoints = 4
)

// FeatureMatcher ORB 特征点匹配器
// 只持有配置，不持有跨调用状态；宽松参数重试只在单次调用内生效
type FeatureMatcher struct {
	cfg FeatureConfig
}

// NewFeatureMatcher 创建特征点匹配器
func NewFeatureMatcher(cfg FeatureConfig) *FeatureMatcher {
	return &FeatureMatcher{cfg: cfg}
}

// Match 在目标图像中查找模板的特征点匹配
//
// 流程: 提取特征点 -> 描述子匹配 -> 数量过滤 -> RANSAC 几何校验 -> 评分 -> 定位。
// 对应点数不足 MinMatches 时返回 (nil, nil)；单应性估计失败不致命，
// 以零内点继续，此时结果保留置信度但 Box/Center 为 nil。
func (f *FeatureMatcher) Match(template, target gocv.Mat) (*MatchResult, error) {
	startTime := time.Now()

	if err := f.cfg.Validate(); err != nil {
		return nil, err
	}
	if template.Empty() || target.Empty() {
		return nil, ErrEmptyImage
	}

	templateGray := f.prepareGray(template)
	targetGray := f.prepareGray(target)
	defer templateGray.Close()
	defer targetGray.Close()

	// 提取特征点（内部含一次宽松参数重试）
	kpTemplate, descTemplate := f.extract(templateGray)
	kpTarget, descTarget := f.extract(targetGray)
	defer descTemplate.Close()
	defer descTarget.Close()

	if len(kpTemplate) < minHomographyPoints || len(kpTarget) < minHomographyPoints {
		logger.Debug("特征点不足: 模板 %d, 目标 %d", len(kpTemplate), len(kpTarget))
		return nil, nil
	}

	// 描述子匹配
	matches := f.correspond(descTemplate, descTarget)
	if len(matches) < f.cfg.MinMatches {
		logger.Debug("匹配点数量不足: %d < %d", len(matches), f.cfg.MinMatches)
		return nil, nil
	}

	result := f.analyze(kpTemplate, kpTarget, matches, template)

	elapsed := float64(time.Since(startTime).Milliseconds())
	logger.LogEvent("ORB", true, elapsed, "匹配完成")
	return result, nil
}

// MatchWithRetry 按重试策略在活动目标上做特征点匹配
func (f *FeatureMatcher) MatchWithRetry(ctx context.Context, template gocv.Mat, capture func() (gocv.Mat, error)) (*MatchResult, error) {
	return f.cfg.Retry.Run(ctx, func() (*MatchResult, error) {
		target, err := capture()
		if err != nil {
			return nil, err
		}
		defer target.Close()
		return f.Match(template, target)
	})
}

// prepareGray 转灰度并在对比度过低时做 CLAHE 增强
func (f *FeatureMatcher) prepareGray(src gocv.Mat) gocv.Mat {
	gray := ToGray(src)

	_, stddev := gray.MeanStdDev()
	if stddev.Val1 < lowContrastStdDev {
		clahe := gocv.NewCLAHEWithParams(2.0, image.Point{X: 8, Y: 8})
		defer clahe.Close()

		enhanced := gocv.NewMat()
		clahe.Apply(gray, &enhanced)
		gray.Close()
		return enhanced
	}
	return gray
}

// extract 检测特征点并计算描述子
// 未检测到特征点时用宽松参数（更低阈值、更多特征点）重试一次
func (f *FeatureMatcher) extract(gray gocv.Mat) ([]gocv.KeyPoint, gocv.Mat) {
	kp, desc := f.detectAndCompute(gray, f.cfg.FastThreshold, f.cfg.EdgeThreshold, f.cfg.NFeatures)
	if len(kp) > 0 {
		return kp, desc
	}
	desc.Close()

	logger.Debug("未检测到特征点，使用宽松参数重试")
	return f.detectAndCompute(gray, 5, 10, f.cfg.NFeatures*2)
}

// detectAndCompute 用指定参数创建 ORB 并提取特征
func (f *FeatureMatcher) detectAndCompute(gray gocv.Mat, fastThreshold, edgeThreshold, nfeatures int) ([]gocv.KeyPoint, gocv.Mat) {
	orb := gocv.NewORBWithParams(
		nfeatures,
		f.cfg.ScaleFactor,
		f.cfg.NLevels,
		edgeThreshold,
		0, // firstLevel
		2, // WTA_K
		gocv.ORBScoreTypeHarris,
		31, // patchSize
		fastThreshold,
	)
	defer orb.Close()

	return orb.DetectAndCompute(gray, gocv.NewMat())
}

// correspond 匹配描述子
// 比值测试与交叉检查互斥，由配置选择
func (f *FeatureMatcher) correspond(descTemplate, descTarget gocv.Mat) []gocv.DMatch {
	if f.cfg.UseRatioTest {
		matcher := gocv.NewBFMatcherWithParams(gocv.NormHamming, false)
		defer matcher.Close()

		raw := matcher.KnnMatch(descTemplate, descTarget, 2)
		return filterByRatio(raw, f.cfg.DistanceThreshold)
	}

	matcher := gocv.NewBFMatcherWithParams(gocv.NormHamming, f.cfg.UseCrossCheck)
	defer matcher.Close()

	return matcher.Match(descTemplate, descTarget)
}

// filterByRatio 两近邻比值测试
// 仅保留最佳距离 < ratio * 次佳距离的匹配
func filterByRatio(raw [][]gocv.DMatch, ratio float64) []gocv.DMatch {
	var good []gocv.DMatch
	for _, pair := range raw {
		if len(pair) >= 2 && float64(pair[0].Distance) < ratio*float64(pair[1].Distance) {
			good = append(good, pair[0])
		}
	}
	return good
}

// analyze 几何校验、评分和定位
func (f *FeatureMatcher) analyze(kpTemplate, kpTarget []gocv.KeyPoint, matches []gocv.DMatch, template gocv.Mat) *MatchResult {
	total := len(matches)

	// 单应性估计（失败不致命，按零内点继续）
	H, inlierMask := f.estimateHomography(kpTemplate, kpTarget, matches)
	defer H.Close()
	defer inlierMask.Close()

	inliers := countInliers(inlierMask)
	inlierRatio := 0.0
	if total > 0 {
		inlierRatio = float64(inliers) / float64(total)
	}

	// 置信度 = 0.7*内点比例 + 0.3*min(匹配总数/100, 1)
	confidence := 0.7*inlierRatio + 0.3*min(float64(total)/100.0, 1.0)

	result := &MatchResult{
		Confidence: confidence,
		Method:     MethodORB,
		Diagnostics: Diagnostics{
			NumMatches:  total,
			NumInliers:  inliers,
			InlierRatio: inlierRatio,
			AvgDistance: avgDistance(matches),
		},
	}

	// 内点足够且单应性有效时投影模板四角定位
	if inliers >= minHomographyPoints && !H.Empty() {
		if box := projectTemplateBox(template, H); box != nil {
			center := box.Center()
			result.Box = box
			result.Center = &center
		}
	}

	return result
}

// estimateHomography 用 RANSAC 估计单应性矩阵
func (f *FeatureMatcher) estimateHomography(kpTemplate, kpTarget []gocv.KeyPoint, matches []gocv.DMatch) (gocv.Mat, gocv.Mat) {
	mask := gocv.NewMat()
	if len(matches) < minHomographyPoints {
		return gocv.NewMat(), mask
	}

	srcMat := gocv.NewMatWithSize(len(matches), 1, gocv.MatTypeCV32FC2)
	dstMat := gocv.NewMatWithSize(len(matches), 1, gocv.MatTypeCV32FC2)
	defer srcMat.Close()
	defer dstMat.Close()

	for i, m := range matches {
		srcMat.SetFloatAt(i, 0, float32(kpTemplate[m.QueryIdx].X))
		srcMat.SetFloatAt(i, 1, float32(kpTemplate[m.QueryIdx].Y))
		dstMat.SetFloatAt(i, 0, float32(kpTarget[m.TrainIdx].X))
		dstMat.SetFloatAt(i, 1, float32(kpTarget[m.TrainIdx].Y))
	}

	H := gocv.FindHomography(srcMat, dstMat, gocv.HomographyMethodRANSAC,
		f.cfg.HomographyThreshold, &mask, 2000, 0.995)
	return H, mask
}

// countInliers 统计内点掩码中的内点数量
func countInliers(mask gocv.Mat) int {
	if mask.Empty() {
		return 0
	}
	inliers := 0
	for i := 0; i < mask.Rows(); i++ {
		if mask.GetUCharAt(i, 0) > 0 {
			inliers++
		}
	}
	return inliers
}

// avgDistance 计算描述子平均距离
func avgDistance(matches []gocv.DMatch) float64 {
	if len(matches) == 0 {
		return 0
	}
	total := 0.0
	for _, m := range matches {
		total += float64(m.Distance)
	}
	return total / float64(len(matches))
}

// projectTemplateBox 将模板四角投影到目标坐标系并取轴对齐包络
// 投影结果含 NaN/Inf 时定位失败，返回 nil
func projectTemplateBox(template gocv.Mat, H gocv.Mat) *Rect {
	h, w := template.Rows(), template.Cols()
	corners := []gocv.Point2f{
		{X: 0, Y: 0},
		{X: float32(w), Y: 0},
		{X: float32(w), Y: float32(h)},
		{X: 0, Y: float32(h)},
	}

	projected, ok := perspectiveTransform(corners, H)
	if !ok {
		return nil
	}

	minX, minY := projected[0].X, projected[0].Y
	maxX, maxY := projected[0].X, projected[0].Y
	for _, pt := range projected[1:] {
		minX = min(minX, pt.X)
		minY = min(minY, pt.Y)
		maxX = max(maxX, pt.X)
		maxY = max(maxY, pt.Y)
	}

	return &Rect{
		Left:   int(minX),
		Top:    int(minY),
		Width:  int(maxX) - int(minX),
		Height: int(maxY) - int(minY),
	}
}

// perspectiveTransform 透视变换 H * [x, y, 1]^T
func perspectiveTransform(pts []gocv.Point2f, H gocv.Mat) ([]gocv.Point2f, bool) {
	if H.Empty() || H.Rows() != 3 || H.Cols() != 3 {
		return nil, false
	}

	h00 := H.GetDoubleAt(0, 0)
	h01 := H.GetDoubleAt(0, 1)
	h02 := H.GetDoubleAt(0, 2)
	h10 := H.GetDoubleAt(1, 0)
	h11 := H.GetDoubleAt(1, 1)
	h12 := H.GetDoubleAt(1, 2)
	h20 := H.GetDoubleAt(2, 0)
	h21 := H.GetDoubleAt(2, 1)
	h22 := H.GetDoubleAt(2, 2)

	result := make([]gocv.Point2f, len(pts))
	for i, pt := range pts {
		x := float64(pt.X)
		y := float64(pt.Y)

		scale := h20*x + h21*y + h22
		if scale == 0 {
			return nil, false
		}
		px := (h00*x + h01*y + h02) / scale
		py := (h10*x + h11*y + h12) / scale
		if math.IsNaN(px) || math.IsNaN(py) || math.IsInf(px, 0) || math.IsInf(py, 0) {
			return nil, false
		}
		result[i].X = float32(px)
		result[i].Y = float32(py)
	}
	return result, true
}
