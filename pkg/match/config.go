package match

import (
	"time"

	"gocv.io/x/gocv"
)

// CorrelationMethod 相关性匹配的评分方式
type CorrelationMethod string

const (
	// MethodCcoeffNormed 归一化相关系数（默认，越大越好）
	MethodCcoeffNormed CorrelationMethod = "ccoeff_normed"
	// MethodCcorrNormed 归一化互相关（越大越好）
	MethodCcorrNormed CorrelationMethod = "ccorr_normed"
	// MethodSqdiffNormed 归一化平方差（越小越好，换算为 1-score）
	MethodSqdiffNormed CorrelationMethod = "sqdiff_normed"
)

// templateMode 转换为 gocv 的匹配模式
func (m CorrelationMethod) templateMode() (gocv.TemplateMatchMode, error) {
	switch m {
	case MethodCcoeffNormed, "":
		return gocv.TmCcoeffNormed, nil
	case MethodCcorrNormed:
		return gocv.TmCcorrNormed, nil
	case MethodSqdiffNormed:
		return gocv.TmSqdiffNormed, nil
	default:
		return 0, &ConfigError{Field: "Method", Reason: "未知的评分方式: " + string(m)}
	}
}

// lowerIsBetter 平方差得分越小越好
func (m CorrelationMethod) lowerIsBetter() bool {
	return m == MethodSqdiffNormed
}

// RetryPolicy 重试策略
// 针对活动目标（如屏幕截图）的瞬时失败做有界重试
type RetryPolicy struct {
	// MaxRetries 最大尝试次数
	MaxRetries int `json:"max_retries"`
	// Delay 两次尝试之间的固定间隔
	Delay time.Duration `json:"retry_delay"`
}

// DefaultRetryPolicy 默认重试策略
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		Delay:      time.Second,
	}
}

// CorrelationConfig 相关性模板匹配配置
type CorrelationConfig struct {
	// Method 评分方式
	Method CorrelationMethod `json:"method"`
	// Threshold 接受匹配的最低置信度
	Threshold float64 `json:"threshold"`
	// ScaleMin / ScaleMax / ScaleSteps 多尺度搜索范围
	// ScaleSteps <= 1 时只按原始尺寸搜索
	ScaleMin   float64 `json:"scale_min"`
	ScaleMax   float64 `json:"scale_max"`
	ScaleSteps int     `json:"scale_steps"`
	// Retry 重试策略
	Retry RetryPolicy `json:"retry"`
}

// DefaultCorrelationConfig 默认相关性匹配配置
func DefaultCorrelationConfig() CorrelationConfig {
	return CorrelationConfig{
		Method:     MethodCcoeffNormed,
		Threshold:  0.8,
		ScaleMin:   0.8,
		ScaleMax:   1.2,
		ScaleSteps: 1,
		Retry:      DefaultRetryPolicy(),
	}
}

// Validate 校验配置
func (c CorrelationConfig) Validate() error {
	if _, err := c.Method.templateMode(); err != nil {
		return err
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return &ConfigError{Field: "Threshold", Reason: "必须在 [0,1] 范围内"}
	}
	if c.ScaleSteps > 1 && c.ScaleMin > c.ScaleMax {
		return &ConfigError{Field: "ScaleMin", Reason: "不能大于 ScaleMax"}
	}
	return nil
}

// FeatureConfig ORB 特征点匹配配置
type FeatureConfig struct {
	// NFeatures 每张图最多保留的特征点数量
	NFeatures int `json:"nfeatures"`
	// ScaleFactor 金字塔缩放因子
	ScaleFactor float32 `json:"scale_factor"`
	// NLevels 金字塔层数
	NLevels int `json:"nlevels"`
	// EdgeThreshold 边缘阈值
	EdgeThreshold int `json:"edge_threshold"`
	// FastThreshold FAST 角点阈值
	FastThreshold int `json:"fast_threshold"`
	// DistanceThreshold 比值测试的距离阈值
	DistanceThreshold float64 `json:"distance_threshold"`
	// MinMatches 接受结果所需的最小匹配点数
	MinMatches int `json:"min_matches"`
	// UseRatioTest 使用两近邻比值测试筛选（与交叉检查互斥）
	UseRatioTest bool `json:"use_ratio_test"`
	// UseCrossCheck 使用最近邻交叉检查筛选（与比值测试互斥）
	UseCrossCheck bool `json:"use_cross_check"`
	// HomographyThreshold RANSAC 重投影误差容限（像素）
	HomographyThreshold float64 `json:"homography_threshold"`
	// Retry 重试策略
	Retry RetryPolicy `json:"retry"`
}

// DefaultFeatureConfig 默认特征点匹配配置
func DefaultFeatureConfig() FeatureConfig {
	return FeatureConfig{
		NFeatures:           1000,
		ScaleFactor:         1.2,
		NLevels:             8,
		EdgeThreshold:       15,
		FastThreshold:       10,
		DistanceThreshold:   0.75,
		MinMatches:          4,
		UseRatioTest:        true,
		UseCrossCheck:       false,
		HomographyThreshold: 5.0,
		Retry:               DefaultRetryPolicy(),
	}
}

// Validate 校验配置
func (c FeatureConfig) Validate() error {
	if c.UseRatioTest && c.UseCrossCheck {
		return ErrConfigConflict
	}
	if c.NFeatures <= 0 {
		return &ConfigError{Field: "NFeatures", Reason: "必须大于 0"}
	}
	if c.DistanceThreshold <= 0 || c.DistanceThreshold >= 1 {
		return &ConfigError{Field: "DistanceThreshold", Reason: "必须在 (0,1) 范围内"}
	}
	if c.MinMatches < 0 {
		return &ConfigError{Field: "MinMatches", Reason: "不能为负数"}
	}
	return nil
}

// DetectorConfig 目标检测配置
type DetectorConfig struct {
	// ModelPath 模型文件路径，为空表示未配置模型（零检测，不报错）
	ModelPath string `json:"model_path"`
	// LabelsPath 类别名称文件路径（每行一个），为空使用内置 COCO 类别
	LabelsPath string `json:"labels_path"`
	// ConfidenceThreshold 检测置信度阈值
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	// NMSThreshold 非极大值抑制阈值
	NMSThreshold float64 `json:"nms_threshold"`
	// InputSize 网络输入边长
	InputSize int `json:"input_size"`
}

// DefaultDetectorConfig 默认目标检测配置
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		ModelPath:           "",
		LabelsPath:          "",
		ConfidenceThreshold: 0.5,
		NMSThreshold:        0.4,
		InputSize:           640,
	}
}

// HybridConfig 混合匹配配置
type HybridConfig struct {
	// Detector 检测阶段配置
	Detector DetectorConfig `json:"detector"`
	// Feature 候选区域内特征点匹配配置
	Feature FeatureConfig `json:"feature"`
	// ROIExpansion 检测框每侧的扩展比例
	ROIExpansion float64 `json:"yolo_roi_expansion"`
	// MinDetectorConfidence 参与匹配的最低检测置信度
	MinDetectorConfidence float64 `json:"min_yolo_confidence"`
	// FallbackEnabled 检测无可用结果时是否回退到全图特征点匹配
	FallbackEnabled bool `json:"orb_fallback"`
}

// DefaultHybridConfig 默认混合匹配配置
func DefaultHybridConfig() HybridConfig {
	feature := DefaultFeatureConfig()
	// 候选区域内匹配用更少的特征点和更高的接受下限
	feature.NFeatures = 500
	feature.MinMatches = 8
	feature.Retry.MaxRetries = 2

	return HybridConfig{
		Detector:              DefaultDetectorConfig(),
		Feature:               feature,
		ROIExpansion:          0.1,
		MinDetectorConfidence: 0.3,
		FallbackEnabled:       true,
	}
}

// Validate 校验配置
func (c HybridConfig) Validate() error {
	if err := c.Feature.Validate(); err != nil {
		return err
	}
	if c.ROIExpansion < 0 {
		return &ConfigError{Field: "ROIExpansion", Reason: "不能为负数"}
	}
	return nil
}
