// Package match 提供视觉匹配引擎
//
// 支持以下匹配方法:
//   - 相关性模板匹配 (Correlation Matching): 归一化相关系数/互相关/平方差
//   - ORB 特征点匹配 (Feature Matching): 描述子匹配 + RANSAC 几何校验
//   - 混合匹配 (Hybrid Matching): 目标检测候选区域 + 特征点精确定位
//
// 基本用法:
//
//	// 模板匹配
//	m := match.NewCorrelationMatcher(match.DefaultCorrelationConfig())
//	result, err := m.Match(template, target)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result != nil {
//	    fmt.Printf("找到位置: (%d, %d), 置信度: %.3f\n",
//	        result.Center.X, result.Center.Y, result.Confidence)
//	}
//
//	// 特征点匹配
//	f := match.NewFeatureMatcher(match.DefaultFeatureConfig())
//	result, err = f.Match(template, target)
//
// 所有匹配器都是无跨调用状态的值对象：每次 Match 调用只读取配置，
// 不修改模板和目标图像，可在多协程中并发使用各自的图像安全匹配。
package match
