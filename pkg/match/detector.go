package match

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"gocv.io/x/gocv"
)

// Detector 目标检测能力接口
//
// 实现方必须在返回前完成非极大值抑制，检测框必须在图像范围内。
// 未配置模型时返回空列表而不是错误：能力缺失是合法的"零检测"结果。
type Detector interface {
	Detect(img gocv.Mat, cfg DetectorConfig) ([]Detection, error)
}

// cocoClassNames 内置 COCO 80 类别
var cocoClassNames = []string{
	"person", "bicycle", "car", "motorbike", "aeroplane", "bus", "train",
	"truck", "boat", "traffic light", "fire hydrant", "stop sign",
	"parking meter", "bench", "bird", "cat", "dog", "horse", "sheep", "cow",
	"elephant", "bear", "zebra", "giraffe", "backpack", "umbrella", "handbag",
	"tie", "suitcase", "frisbee", "skis", "snowboard", "sports ball", "kite",
	"baseball bat", "baseball glove", "skateboard", "surfboard",
	"tennis racket", "bottle", "wine glass", "cup", "fork", "knife", "spoon",
	"bowl", "banana", "apple", "sandwich", "orange", "broccoli", "carrot",
	"hot dog", "pizza", "donut", "cake", "chair", "sofa", "pottedplant",
	"bed", "diningtable", "toilet", "tvmonitor", "laptop", "mouse", "remote",
	"keyboard", "cell phone", "microwave", "oven", "toaster", "sink",
	"refrigerator", "book", "clock", "vase", "scissors", "teddy bear",
	"hair drier", "toothbrush",
}

// LoadClassNames 从类别文件加载类别名称（每行一个）
// path 为空时返回内置 COCO 类别
func LoadClassNames(path string) ([]string, error) {
	if path == "" {
		return cocoClassNames, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name != "" {
			names = append(names, name)
		}
	}
	return names, scanner.Err()
}

// className 按编号取类别名称，超出范围时返回占位名
func className(names []string, id int) string {
	if id >= 0 && id < len(names) {
		return names[id]
	}
	return "class_" + strconv.Itoa(id)
}
