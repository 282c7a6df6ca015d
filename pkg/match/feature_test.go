package match

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestFeatureMatch_SameImage(t *testing.T) {
	target := newNoiseMat(400, 300, 21)
	defer target.Close()

	template := target.Clone()
	defer template.Close()

	matcher := NewFeatureMatcher(DefaultFeatureConfig())
	result, err := matcher.Match(template, target)
	if err != nil {
		t.Fatalf("匹配失败: %v", err)
	}
	if result == nil {
		t.Fatal("相同图像应匹配成功")
	}

	if result.Diagnostics.NumMatches < 4 {
		t.Errorf("匹配点数量过少: %d", result.Diagnostics.NumMatches)
	}
	if result.Diagnostics.InlierRatio < 0.9 {
		t.Errorf("相同图像的内点比例过低: %.4f", result.Diagnostics.InlierRatio)
	}
	if result.Confidence < 0.9 {
		t.Errorf("相同图像的置信度过低: %.4f", result.Confidence)
	}
	if result.Method != MethodORB {
		t.Errorf("方法标签错误: %s", result.Method)
	}

	// 单应性为恒等变换，定位框应覆盖整张图
	if result.Box == nil || result.Center == nil {
		t.Fatal("相同图像应定位成功")
	}
	if absInt(result.Center.X-200) > 30 || absInt(result.Center.Y-150) > 30 {
		t.Errorf("中心点偏离图像中心过远: (%d,%d)", result.Center.X, result.Center.Y)
	}

	t.Logf("匹配点=%d, 内点=%d, 内点比例=%.4f, 置信度=%.4f",
		result.Diagnostics.NumMatches, result.Diagnostics.NumInliers,
		result.Diagnostics.InlierRatio, result.Confidence)
}

func TestFeatureMatch_TranslatedPatch(t *testing.T) {
	target := newNoiseMat(640, 480, 22)
	defer target.Close()

	template := newNoiseMat(120, 90, 23)
	defer template.Close()
	plantPatch(&target, template, 200, 150)

	matcher := NewFeatureMatcher(DefaultFeatureConfig())
	result, err := matcher.Match(template, target)
	if err != nil {
		t.Fatalf("匹配失败: %v", err)
	}
	if result == nil {
		t.Fatal("应找到植入的模板")
	}
	if result.Box == nil || result.Center == nil {
		t.Fatal("应定位成功")
	}

	// 植入位置 (200,150)，模板中心 (260,195)
	if absInt(result.Center.X-260) > 15 || absInt(result.Center.Y-195) > 15 {
		t.Errorf("中心点偏离植入位置: (%d,%d), 期望约 (260,195)", result.Center.X, result.Center.Y)
	}
}

func TestFeatureMatch_MinMatchesGate(t *testing.T) {
	target := newNoiseMat(400, 300, 24)
	defer target.Close()

	template := target.Clone()
	defer template.Close()

	cfg := DefaultFeatureConfig()
	cfg.MinMatches = 100000
	matcher := NewFeatureMatcher(cfg)

	result, err := matcher.Match(template, target)
	if err != nil {
		t.Fatalf("匹配点不足应返回未找到而不是错误: %v", err)
	}
	if result != nil {
		t.Error("匹配点数量低于下限时不应返回结果")
	}
}

func TestFeatureMatch_ConfigConflict(t *testing.T) {
	target := newNoiseMat(100, 100, 25)
	defer target.Close()
	template := newNoiseMat(50, 50, 26)
	defer template.Close()

	cfg := DefaultFeatureConfig()
	cfg.UseRatioTest = true
	cfg.UseCrossCheck = true
	matcher := NewFeatureMatcher(cfg)

	_, err := matcher.Match(template, target)
	if !errors.Is(err, ErrConfigConflict) {
		t.Errorf("比值测试与交叉检查同时开启应报 ErrConfigConflict: %v", err)
	}
}

func TestFeatureMatch_CrossCheck(t *testing.T) {
	target := newNoiseMat(640, 480, 27)
	defer target.Close()

	template := newNoiseMat(120, 90, 28)
	defer template.Close()
	plantPatch(&target, template, 300, 250)

	cfg := DefaultFeatureConfig()
	cfg.UseRatioTest = false
	cfg.UseCrossCheck = true
	matcher := NewFeatureMatcher(cfg)

	result, err := matcher.Match(template, target)
	if err != nil {
		t.Fatalf("匹配失败: %v", err)
	}
	if result == nil {
		t.Fatal("交叉检查方式也应找到植入的模板")
	}
}

func TestFeatureMatch_EmptyImage(t *testing.T) {
	template := newNoiseMat(50, 50, 29)
	defer template.Close()

	empty := gocv.NewMat()
	defer empty.Close()

	matcher := NewFeatureMatcher(DefaultFeatureConfig())
	_, err := matcher.Match(template, empty)
	if !errors.Is(err, ErrEmptyImage) {
		t.Errorf("空图像应报 ErrEmptyImage: %v", err)
	}
}
