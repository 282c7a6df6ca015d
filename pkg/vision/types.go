package vision

import (
	"github.com/1ajie1/identification-tester/pkg/match"
)

// Version 版本号
const Version = "1.0.0"

// Method 匹配方法枚举
type Method string

const (
	// MethodTemplate 相关性模板匹配
	MethodTemplate Method = "template"
	// MethodORB ORB 特征点匹配
	MethodORB Method = "orb"
	// MethodHybrid 检测器辅助的混合匹配
	MethodHybrid Method = "hybrid"
)

// 类型别名，调用方无需直接导入 match 包
type (
	// Point 二维坐标点
	Point = match.Point
	// Rect 矩形区域
	Rect = match.Rect
	// MatchResult 匹配结果
	MatchResult = match.MatchResult
	// Detection 目标检测结果
	Detection = match.Detection
)

// ImageInput 支持的图像输入类型
// 可以是文件路径 (string)、image.Image 或 gocv.Mat
type ImageInput interface{}
