package match

import (
	"image/color"
	"testing"
)

func TestCorrelationMatch_PlantedPatch(t *testing.T) {
	target := newNoiseMat(640, 480, 1)
	defer target.Close()

	template := newNoiseMat(80, 60, 2)
	defer template.Close()

	plantPatch(&target, template, 200, 150)

	matcher := NewCorrelationMatcher(DefaultCorrelationConfig())
	result, err := matcher.Match(template, target)
	if err != nil {
		t.Fatalf("匹配失败: %v", err)
	}
	if result == nil {
		t.Fatal("应找到植入的模板")
	}

	if result.Box.Left != 200 || result.Box.Top != 150 {
		t.Errorf("位置错误: (%d,%d), 期望 (200,150)", result.Box.Left, result.Box.Top)
	}
	if result.Confidence < 0.99 {
		t.Errorf("植入模板的置信度过低: %.4f", result.Confidence)
	}
	if result.Method != MethodTemplate {
		t.Errorf("方法标签错误: %s", result.Method)
	}
	if result.Center.X != 240 || result.Center.Y != 180 {
		t.Errorf("中心点错误: (%d,%d)", result.Center.X, result.Center.Y)
	}

	t.Logf("匹配结果: 位置=(%d,%d), 置信度=%.4f", result.Box.Left, result.Box.Top, result.Confidence)
}

func TestCorrelationMatch_NoMatch(t *testing.T) {
	target := newNoiseMat(320, 240, 3)
	defer target.Close()

	// 与目标无关的模板
	template := newNoiseMat(64, 64, 4)
	defer template.Close()

	matcher := NewCorrelationMatcher(DefaultCorrelationConfig())
	result, err := matcher.Match(template, target)
	if err != nil {
		t.Fatalf("匹配失败: %v", err)
	}
	if result != nil {
		t.Errorf("无关模板不应匹配成功: 置信度=%.4f", result.Confidence)
	}
}

func TestCorrelationMatch_TemplateLargerThanTarget(t *testing.T) {
	target := newNoiseMat(100, 100, 5)
	defer target.Close()

	template := newNoiseMat(200, 200, 6)
	defer template.Close()

	matcher := NewCorrelationMatcher(DefaultCorrelationConfig())
	result, err := matcher.Match(template, target)
	if err != nil {
		t.Fatalf("模板过大应返回未找到而不是错误: %v", err)
	}
	if result != nil {
		t.Error("模板过大不应有匹配结果")
	}
}

func TestCorrelationMatch_SqdiffSolidColor(t *testing.T) {
	target := newNoiseMat(640, 480, 7)
	defer target.Close()

	// 纯色模板在归一化相关系数下退化（方差为零），平方差方式不受影响
	template := newSolidMat(64, 64, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	defer template.Close()

	plantPatch(&target, template, 100, 50)

	cfg := DefaultCorrelationConfig()
	cfg.Method = MethodSqdiffNormed
	matcher := NewCorrelationMatcher(cfg)

	result, err := matcher.Match(template, target)
	if err != nil {
		t.Fatalf("匹配失败: %v", err)
	}
	if result == nil {
		t.Fatal("应找到植入的纯色模板")
	}
	if result.Box.Left != 100 || result.Box.Top != 50 {
		t.Errorf("位置错误: (%d,%d), 期望 (100,50)", result.Box.Left, result.Box.Top)
	}
	if result.Confidence < 0.95 {
		t.Errorf("置信度过低: %.4f", result.Confidence)
	}
}

func TestCorrelationMatch_MultiScale(t *testing.T) {
	target := newNoiseMat(640, 480, 8)
	defer target.Close()

	template := newNoiseMat(80, 60, 9)
	defer template.Close()

	// 植入 1.2 倍缩放后的模板
	scaled := ScaleImage(template, 1.2)
	defer scaled.Close()
	plantPatch(&target, scaled, 300, 200)

	cfg := DefaultCorrelationConfig()
	cfg.ScaleSteps = 9
	matcher := NewCorrelationMatcher(cfg)

	result, err := matcher.Match(template, target)
	if err != nil {
		t.Fatalf("匹配失败: %v", err)
	}
	if result == nil {
		t.Fatal("多尺度搜索应找到缩放后的模板")
	}
	if result.Diagnostics.Scale < 1.15 || result.Diagnostics.Scale > 1.25 {
		t.Errorf("命中的缩放比例错误: %.2f, 期望约 1.2", result.Diagnostics.Scale)
	}
	if absInt(result.Box.Left-300) > 2 || absInt(result.Box.Top-200) > 2 {
		t.Errorf("位置错误: (%d,%d), 期望约 (300,200)", result.Box.Left, result.Box.Top)
	}

	t.Logf("多尺度匹配: 缩放=%.2f, 置信度=%.4f", result.Diagnostics.Scale, result.Confidence)
}

func TestCorrelationMatch_Deterministic(t *testing.T) {
	target := newNoiseMat(320, 240, 10)
	defer target.Close()

	template := newNoiseMat(48, 48, 11)
	defer template.Close()
	plantPatch(&target, template, 120, 80)

	matcher := NewCorrelationMatcher(DefaultCorrelationConfig())

	first, err := matcher.Match(template, target)
	if err != nil || first == nil {
		t.Fatalf("第一次匹配失败: result=%v, err=%v", first, err)
	}
	second, err := matcher.Match(template, target)
	if err != nil || second == nil {
		t.Fatalf("第二次匹配失败: result=%v, err=%v", second, err)
	}

	if *first.Box != *second.Box || first.Confidence != second.Confidence {
		t.Errorf("相同输入的两次匹配结果不一致: %+v vs %+v", first, second)
	}
}

func TestCorrelationMatch_InvalidConfig(t *testing.T) {
	target := newNoiseMat(100, 100, 12)
	defer target.Close()
	template := newNoiseMat(32, 32, 13)
	defer template.Close()

	cfg := DefaultCorrelationConfig()
	cfg.Threshold = 1.5
	matcher := NewCorrelationMatcher(cfg)

	_, err := matcher.Match(template, target)
	if err == nil {
		t.Fatal("非法阈值应报错")
	}
	if !IsInputError(err) {
		t.Errorf("配置错误应属于输入错误: %v", err)
	}
}

func TestCorrelationFindAll(t *testing.T) {
	target := newNoiseMat(640, 480, 14)
	defer target.Close()

	template := newNoiseMat(80, 60, 15)
	defer template.Close()

	positions := []Point{{X: 50, Y: 40}, {X: 300, Y: 200}, {X: 500, Y: 380}}
	for _, p := range positions {
		plantPatch(&target, template, p.X, p.Y)
	}

	matcher := NewCorrelationMatcher(DefaultCorrelationConfig())
	results, err := matcher.FindAll(template, target, 5)
	if err != nil {
		t.Fatalf("查找失败: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("应找到 3 个匹配, 实际 %d 个", len(results))
	}

	// 置信度降序
	for i := 1; i < len(results); i++ {
		if results[i].Confidence > results[i-1].Confidence {
			t.Errorf("结果未按置信度降序: %.4f > %.4f", results[i].Confidence, results[i-1].Confidence)
		}
	}

	// 每个植入位置都被找到
	for _, p := range positions {
		found := false
		for _, r := range results {
			if absInt(r.Box.Left-p.X) <= 2 && absInt(r.Box.Top-p.Y) <= 2 {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("未找到植入位置 (%d,%d)", p.X, p.Y)
		}
	}
}

func TestCorrelationFindAll_MaxMatchesLimit(t *testing.T) {
	target := newNoiseMat(640, 480, 16)
	defer target.Close()

	template := newNoiseMat(80, 60, 17)
	defer template.Close()

	for _, p := range []Point{{X: 50, Y: 40}, {X: 300, Y: 200}, {X: 500, Y: 380}} {
		plantPatch(&target, template, p.X, p.Y)
	}

	matcher := NewCorrelationMatcher(DefaultCorrelationConfig())
	results, err := matcher.FindAll(template, target, 2)
	if err != nil {
		t.Fatalf("查找失败: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("应最多返回 2 个匹配, 实际 %d 个", len(results))
	}
}
