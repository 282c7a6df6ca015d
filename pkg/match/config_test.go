package match

import (
	"errors"
	"testing"
)

func TestCorrelationConfig_Validate(t *testing.T) {
	if err := DefaultCorrelationConfig().Validate(); err != nil {
		t.Errorf("默认配置应有效: %v", err)
	}

	cfg := DefaultCorrelationConfig()
	cfg.Threshold = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("阈值超出 [0,1] 应报错")
	}

	cfg = DefaultCorrelationConfig()
	cfg.Method = "nonsense"
	if err := cfg.Validate(); err == nil {
		t.Error("未知评分方式应报错")
	}

	cfg = DefaultCorrelationConfig()
	cfg.ScaleSteps = 5
	cfg.ScaleMin = 2.0
	cfg.ScaleMax = 0.5
	if err := cfg.Validate(); err == nil {
		t.Error("ScaleMin 大于 ScaleMax 应报错")
	}
}

func TestFeatureConfig_Validate(t *testing.T) {
	if err := DefaultFeatureConfig().Validate(); err != nil {
		t.Errorf("默认配置应有效: %v", err)
	}

	cfg := DefaultFeatureConfig()
	cfg.UseRatioTest = true
	cfg.UseCrossCheck = true
	if err := cfg.Validate(); !errors.Is(err, ErrConfigConflict) {
		t.Errorf("筛选方式互斥应报 ErrConfigConflict: %v", err)
	}

	cfg = DefaultFeatureConfig()
	cfg.NFeatures = 0
	if err := cfg.Validate(); err == nil {
		t.Error("特征点数量为 0 应报错")
	}

	cfg = DefaultFeatureConfig()
	cfg.DistanceThreshold = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("距离阈值超出 (0,1) 应报错")
	}
}

func TestHybridConfig_Validate(t *testing.T) {
	if err := DefaultHybridConfig().Validate(); err != nil {
		t.Errorf("默认配置应有效: %v", err)
	}

	cfg := DefaultHybridConfig()
	cfg.ROIExpansion = -0.1
	if err := cfg.Validate(); err == nil {
		t.Error("负的扩展比例应报错")
	}

	// 内嵌特征点配置的错误应向上传递
	cfg = DefaultHybridConfig()
	cfg.Feature.NFeatures = -1
	if err := cfg.Validate(); err == nil {
		t.Error("内嵌特征点配置非法应报错")
	}
}

func TestDefaultHybridConfig_FeatureOverrides(t *testing.T) {
	cfg := DefaultHybridConfig()

	if cfg.Feature.NFeatures != 500 {
		t.Errorf("候选区域匹配的特征点数量应为 500: %d", cfg.Feature.NFeatures)
	}
	if cfg.Feature.MinMatches != 8 {
		t.Errorf("候选区域匹配的最小匹配点数应为 8: %d", cfg.Feature.MinMatches)
	}
	if cfg.Feature.Retry.MaxRetries != 2 {
		t.Errorf("候选区域匹配的重试次数应为 2: %d", cfg.Feature.Retry.MaxRetries)
	}
	if !cfg.FallbackEnabled {
		t.Error("回退默认应开启")
	}
}

func TestIsInputError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{ErrEmptyImage, true},
		{ErrConfigConflict, true},
		{&ConfigError{Field: "X", Reason: "y"}, true},
		{&ImageSizeError{}, true},
		{errors.New("截屏失败"), false},
	}

	for _, c := range cases {
		if got := IsInputError(c.err); got != c.want {
			t.Errorf("IsInputError(%v) = %v, 期望 %v", c.err, got, c.want)
		}
	}
}
