// Package vision 提供图像匹配的门面接口
//
// 主要功能:
//   - 模板匹配: 灰度相关性模板匹配（可多尺度）
//   - 特征点匹配: ORB + RANSAC 几何校验
//   - 混合匹配: 目标检测收窄候选区域 + 特征点精确定位
//
// 基本用法:
//
//	// 在截图中查找模板
//	result, err := vision.Find("template.png", "screen.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result != nil {
//	    fmt.Printf("找到位置: (%d, %d)\n", result.Center.X, result.Center.Y)
//	}
//
//	// 特征点匹配（对缩放和旋转更鲁棒）
//	result, err = vision.Find("template.png", "screen.png", vision.WithMethod(vision.MethodORB))
package vision

import (
	"context"
	"fmt"
	"image"
	"time"

	"gocv.io/x/gocv"

	"github.com/1ajie1/identification-tester/internal/logger"
	"github.com/1ajie1/identification-tester/pkg/match"
)

// Find 在目标图像中查找模板
// template / target: 文件路径、image.Image 或 gocv.Mat
// 未找到匹配时返回 (nil, nil)
func Find(template, target ImageInput, opts ...Option) (*MatchResult, error) {
	cfg := defaultFindConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	templateMat, targetMat, err := loadPair(template, target)
	if err != nil {
		return nil, err
	}
	defer templateMat.Close()
	defer targetMat.Close()

	return matchOnce(cfg, templateMat, targetMat)
}

// FindLocation 在目标图像中查找模板的中心位置
// 未找到或无法定位时返回 (nil, nil)
func FindLocation(template, target ImageInput, opts ...Option) (*Point, error) {
	result, err := Find(template, target, opts...)
	if err != nil || result == nil {
		return nil, err
	}
	return result.Center, nil
}

// FindAll 在目标图像中查找最多 maxMatches 个互不重叠的匹配
// 只支持模板匹配方法
func FindAll(template, target ImageInput, maxMatches int, opts ...Option) ([]*MatchResult, error) {
	cfg := defaultFindConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.method != MethodTemplate {
		return nil, fmt.Errorf("FindAll 只支持模板匹配方法: %s", cfg.method)
	}

	templateMat, targetMat, err := loadPair(template, target)
	if err != nil {
		return nil, err
	}
	defer templateMat.Close()
	defer targetMat.Close()

	return match.NewCorrelationMatcher(cfg.correlation).FindAll(templateMat, targetMat, maxMatches)
}

// WaitFor 周期性截取目标并查找模板，直到找到或超时
// capture 每轮提供新的目标图像（如屏幕截图）；超时返回 (nil, nil)
func WaitFor(ctx context.Context, template ImageInput, capture func() (gocv.Mat, error), opts ...Option) (*MatchResult, error) {
	cfg := defaultFindConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	templateMat, err := match.LoadImageInput(template)
	if err != nil {
		return nil, err
	}
	defer templateMat.Close()

	deadline := time.Now().Add(cfg.timeout)
	for {
		target, err := capture()
		if err != nil {
			return nil, err
		}

		result, err := matchOnce(cfg, templateMat, target)
		target.Close()
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}

		if time.Now().After(deadline) {
			logger.Debug("等待匹配超时: %v", cfg.timeout)
			return nil, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.interval):
		}
	}
}

// Detect 在目标图像中检测目标
func Detect(target ImageInput, opts ...Option) ([]Detection, error) {
	cfg := defaultFindConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	targetMat, err := match.LoadImageInput(target)
	if err != nil {
		return nil, err
	}
	defer targetMat.Close()

	detector := cfg.detector
	if detector == nil {
		detector = match.NewDNNDetector()
	}
	return detector.Detect(targetMat, cfg.hybrid.Detector)
}

// matchOnce 按配置的方法执行一次匹配
func matchOnce(cfg *findConfig, template, target gocv.Mat) (*MatchResult, error) {
	switch cfg.method {
	case MethodTemplate:
		return match.NewCorrelationMatcher(cfg.correlation).Match(template, target)
	case MethodORB:
		return match.NewFeatureMatcher(cfg.feature).Match(template, target)
	case MethodHybrid:
		return match.NewHybridMatcher(cfg.hybrid, cfg.detector).Match(template, target)
	default:
		return nil, fmt.Errorf("未知的匹配方法: %s", cfg.method)
	}
}

// loadPair 加载模板和目标图像
func loadPair(template, target ImageInput) (gocv.Mat, gocv.Mat, error) {
	templateMat, err := match.LoadImageInput(template)
	if err != nil {
		return gocv.Mat{}, gocv.Mat{}, err
	}
	targetMat, err := match.LoadImageInput(target)
	if err != nil {
		templateMat.Close()
		return gocv.Mat{}, gocv.Mat{}, err
	}
	return templateMat, targetMat, nil
}

// ============ 工具函数 ============

// ReadImage 读取图像文件
func ReadImage(filename string) (gocv.Mat, error) {
	return match.ReadImage(filename)
}

// LoadImage 加载图像 (支持多种输入类型)
func LoadImage(input ImageInput) (gocv.Mat, error) {
	return match.LoadImageInput(input)
}

// ImageToMat 将 image.Image 转换为 gocv.Mat
func ImageToMat(img image.Image) (gocv.Mat, error) {
	return match.ImageToMat(img)
}
