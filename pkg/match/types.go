package match

// Point 表示二维坐标点
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rect 表示匹配区域（左上角坐标 + 宽高）
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center 返回矩形中心点
func (r Rect) Center() Point {
	return Point{
		X: r.Left + r.Width/2,
		Y: r.Top + r.Height/2,
	}
}

// Right 返回右边界坐标
func (r Rect) Right() int {
	return r.Left + r.Width
}

// Bottom 返回下边界坐标
func (r Rect) Bottom() int {
	return r.Top + r.Height
}

// 匹配方法标签
const (
	// MethodTemplate 相关性模板匹配
	MethodTemplate = "template"
	// MethodORB ORB 特征点匹配
	MethodORB = "orb"
	// MethodHybrid 检测器 + ORB 混合匹配
	MethodHybrid = "yolo+orb"
	// MethodHybridFallback 检测无结果后的全图 ORB 回退
	MethodHybridFallback = "yolo+orb_fallback"
)

// Diagnostics 各匹配方法的诊断信息
// 不同方法填充不同字段，未填充字段在 JSON 中省略
type Diagnostics struct {
	// Scale 模板匹配命中的缩放比例
	Scale float64 `json:"scale,omitempty"`
	// MatchValue 模板匹配原始得分
	MatchValue float64 `json:"match_value,omitempty"`
	// NumMatches 描述子匹配总数
	NumMatches int `json:"num_matches,omitempty"`
	// NumInliers RANSAC 内点数量
	NumInliers int `json:"num_inliers,omitempty"`
	// InlierRatio 内点比例
	InlierRatio float64 `json:"inlier_ratio,omitempty"`
	// AvgDistance 描述子平均距离
	AvgDistance float64 `json:"avg_distance,omitempty"`
	// DetectorConfidence 混合匹配时检测器给出的置信度
	DetectorConfidence float64 `json:"yolo_confidence,omitempty"`
}

// MatchResult 图像匹配结果
// 匹配失败用 nil 表示，不用零置信度结果表示
type MatchResult struct {
	// Confidence 匹配置信度 (0-1)
	Confidence float64 `json:"confidence"`
	// Box 匹配区域，定位失败时为 nil
	Box *Rect `json:"box,omitempty"`
	// Center 匹配区域中心点，定位失败时为 nil
	Center *Point `json:"center,omitempty"`
	// Method 匹配方法标签
	Method string `json:"method"`
	// Diagnostics 方法相关的诊断信息
	Diagnostics Diagnostics `json:"diagnostics"`
}

// Detection 目标检测结果
// 混合匹配的输入，也可在多目标场景中原样返回
type Detection struct {
	// Box 检测框（已裁剪到图像范围内）
	Box Rect `json:"box"`
	// ClassID 类别编号
	ClassID int `json:"class_id"`
	// ClassName 类别名称
	ClassName string `json:"class_name"`
	// Confidence 检测置信度 (0-1)
	Confidence float64 `json:"confidence"`
}
