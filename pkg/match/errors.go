package match

import (
	"errors"
	"fmt"
)

// ErrConfigConflict 比值测试与交叉检查互斥
var ErrConfigConflict = errors.New("use_ratio_test 与 use_cross_check 不能同时开启")

// ErrEmptyImage 输入图像为空
var ErrEmptyImage = errors.New("输入图像为空")

// ConfigError 配置字段非法
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("配置项 %s 非法: %s", e.Field, e.Reason)
}

// ImageSizeError 模板尺寸大于目标图像
type ImageSizeError struct {
	TargetSize   [2]int
	TemplateSize [2]int
}

func (e *ImageSizeError) Error() string {
	return fmt.Sprintf("模板尺寸 %dx%d 大于目标图像 %dx%d",
		e.TemplateSize[0], e.TemplateSize[1], e.TargetSize[0], e.TargetSize[1])
}

// IsInputError 判断是否为输入错误
// 输入错误立即返回，不参与重试；瞬时匹配失败用 nil 结果表示
func IsInputError(err error) bool {
	if err == nil {
		return false
	}
	var sizeErr *ImageSizeError
	if errors.As(err, &sizeErr) {
		return true
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return true
	}
	return errors.Is(err, ErrEmptyImage) || errors.Is(err, ErrConfigConflict)
}
