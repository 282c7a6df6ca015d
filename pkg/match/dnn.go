package match

import (
	"fmt"
	"image"
	"os"
	"time"

	"gocv.io/x/gocv"

	"github.com/1ajie1/identification-tester/internal/logger"
)

// DNNDetector 基于 OpenCV DNN 的 ONNX 目标检测器
// 实现 Detector 接口；模型按调用加载，检测器本身不持有网络状态
type DNNDetector struct{}

// NewDNNDetector 创建 DNN 检测器
func NewDNNDetector() *DNNDetector {
	return &DNNDetector{}
}

// Detect 检测图像中的目标
//
// ModelPath 为空时返回 (nil, nil)：没有模型是合法的零检测结果。
// 返回前已做非极大值抑制，检测框已裁剪到图像范围内。
func (d *DNNDetector) Detect(img gocv.Mat, cfg DetectorConfig) ([]Detection, error) {
	if cfg.ModelPath == "" {
		return nil, nil
	}
	if img.Empty() {
		return nil, ErrEmptyImage
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("模型文件不存在: %s", cfg.ModelPath)
	}

	startTime := time.Now()

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("无法加载模型: %s", cfg.ModelPath)
	}
	defer net.Close()

	inputSize := cfg.InputSize
	if inputSize <= 0 {
		inputSize = 640
	}

	// 预处理: 归一化到 [0,1]，缩放到网络输入尺寸，BGR -> RGB
	blob := gocv.BlobFromImage(img, 1.0/255.0,
		image.Point{X: inputSize, Y: inputSize},
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	net.SetInput(blob, "")
	output := net.Forward("")
	defer output.Close()

	names, err := LoadClassNames(cfg.LabelsPath)
	if err != nil {
		return nil, fmt.Errorf("加载类别文件失败: %w", err)
	}

	detections, err := parseDetections(output, img.Cols(), img.Rows(), inputSize, cfg, names)
	if err != nil {
		return nil, err
	}

	detections = applyNMS(detections, cfg)

	elapsed := float64(time.Since(startTime).Milliseconds())
	logger.LogEvent("DET", true, elapsed, fmt.Sprintf("检测到 %d 个目标", len(detections)))
	return detections, nil
}

// parseDetections 解析网络输出
// 输出布局: [1, N, 4+1+classes]，每行为 cx, cy, w, h, obj, 类别得分...
func parseDetections(output gocv.Mat, imgW, imgH, inputSize int, cfg DetectorConfig, names []string) ([]Detection, error) {
	dims := output.Size()
	if len(dims) < 3 {
		return nil, fmt.Errorf("不支持的网络输出维度: %v", dims)
	}
	rows := dims[1]
	cols := dims[2]
	if cols < 6 {
		return nil, fmt.Errorf("不支持的网络输出行宽: %d", cols)
	}

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("读取网络输出失败: %w", err)
	}

	// 网络输入坐标换算回原图坐标
	scaleX := float64(imgW) / float64(inputSize)
	scaleY := float64(imgH) / float64(inputSize)

	var detections []Detection
	for i := 0; i < rows; i++ {
		row := data[i*cols : (i+1)*cols]

		objectness := float64(row[4])
		if objectness < cfg.ConfidenceThreshold {
			continue
		}

		classID := 0
		classScore := float32(0)
		for c := 5; c < cols; c++ {
			if row[c] > classScore {
				classScore = row[c]
				classID = c - 5
			}
		}

		confidence := objectness * float64(classScore)
		if confidence < cfg.ConfidenceThreshold {
			continue
		}

		cx := float64(row[0]) * scaleX
		cy := float64(row[1]) * scaleY
		w := float64(row[2]) * scaleX
		h := float64(row[3]) * scaleY

		box := clampRect(Rect{
			Left:   int(cx - w/2),
			Top:    int(cy - h/2),
			Width:  int(w),
			Height: int(h),
		}, imgW, imgH)
		if box.Width <= 0 || box.Height <= 0 {
			continue
		}

		detections = append(detections, Detection{
			Box:        box,
			ClassID:    classID,
			ClassName:  className(names, classID),
			Confidence: confidence,
		})
	}

	return detections, nil
}

// applyNMS 非极大值抑制，去除重叠的低置信度检测
func applyNMS(detections []Detection, cfg DetectorConfig) []Detection {
	if len(detections) <= 1 {
		return detections
	}

	boxes := make([]image.Rectangle, len(detections))
	scores := make([]float32, len(detections))
	for i, det := range detections {
		boxes[i] = image.Rect(det.Box.Left, det.Box.Top, det.Box.Right(), det.Box.Bottom())
		scores[i] = float32(det.Confidence)
	}

	indices := gocv.NMSBoxes(boxes, scores,
		float32(cfg.ConfidenceThreshold), float32(cfg.NMSThreshold))

	kept := make([]Detection, 0, len(indices))
	for _, idx := range indices {
		kept = append(kept, detections[idx])
	}
	return kept
}
