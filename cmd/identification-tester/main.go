package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"gocv.io/x/gocv"

	"github.com/1ajie1/identification-tester/internal/logger"
	"github.com/1ajie1/identification-tester/pkg/config"
	"github.com/1ajie1/identification-tester/pkg/match"
	"github.com/1ajie1/identification-tester/pkg/overlay"
	"github.com/1ajie1/identification-tester/pkg/process"
	"github.com/1ajie1/identification-tester/pkg/screen"
	"github.com/1ajie1/identification-tester/pkg/vision"
)

// 版本信息 (可通过 ldflags 注入)
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// output 命令行输出结构
type output struct {
	Found   bool                   `json:"found"`
	Result  *vision.MatchResult    `json:"result,omitempty"`
	Results []*vision.MatchResult  `json:"results,omitempty"`
	Elapsed float64                `json:"elapsed_ms"`
	Usage   *process.ResourceUsage `json:"usage,omitempty"`
}

func main() {
	var (
		templatePath = flag.String("template", "", "模板图像路径 (必填)")
		targetPath   = flag.String("target", "", "目标图像路径 (为空时截取屏幕)")
		method       = flag.String("method", "", "匹配方法: template / orb / hybrid")
		threshold    = flag.Float64("threshold", 0, "模板匹配阈值 (0,1]")
		scaleSteps   = flag.Int("scale-steps", 0, "多尺度匹配的步数 (>1 时启用)")
		modelPath    = flag.String("model", "", "混合匹配的检测模型路径 (ONNX)")
		labelsPath   = flag.String("labels", "", "检测类别文件路径 (每行一个)")
		findAll      = flag.Int("find-all", 0, "查找多个匹配 (仅 template 方法)")
		waitSec      = flag.Int("wait", 0, "等待屏幕出现匹配的超时秒数")
		outputPath   = flag.String("output", "", "匹配结果可视化保存路径")
		logLevel     = flag.String("log-level", "", "日志级别: DEBUG / INFO / WARN / ERROR")
		showStats    = flag.Bool("stats", false, "输出进程资源占用")
		saveConfig   = flag.Bool("save", false, "保存当前参数为默认配置")
		showVersion  = flag.Bool("version", false, "显示版本信息")
		showHelp     = flag.Bool("help", false, "显示帮助信息")
	)

	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}
	if *showHelp {
		printHelp()
		return
	}

	// 加载配置，命令行参数优先级高于配置文件
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] 加载配置失败: %v\n", err)
	}
	if *method != "" {
		cfg.Method = *method
	}
	if *threshold > 0 {
		cfg.Correlation.Threshold = *threshold
	}
	if *scaleSteps > 0 {
		cfg.Correlation.ScaleSteps = *scaleSteps
	}
	if *modelPath != "" {
		cfg.Hybrid.Detector.ModelPath = *modelPath
	}
	if *labelsPath != "" {
		cfg.Hybrid.Detector.LabelsPath = *labelsPath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] 配置无效: %v\n", err)
		os.Exit(2)
	}

	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	if *saveConfig {
		if err := config.Save(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] 保存配置失败: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "[INFO] 配置已保存到 %s\n", config.GetDefaultManager().GetConfigFile())
		}
	}

	if *templatePath == "" {
		fmt.Fprintln(os.Stderr, "[ERROR] 缺少模板图像，请使用 -template 参数指定")
		printHelp()
		os.Exit(2)
	}

	if err := run(cfg, *templatePath, *targetPath, *findAll, *waitSec, *outputPath, *showStats); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(2)
	}
}

// run 执行匹配并输出 JSON 结果
// 找到匹配时退出码为 0，未找到为 1
func run(cfg *config.MatcherConfig, templatePath, targetPath string, findAll, waitSec int, outputPath string, showStats bool) error {
	opts := buildOptions(cfg)

	target, meta, err := loadTarget(targetPath)
	if err != nil {
		return err
	}
	defer target.Close()

	startTime := time.Now()
	out := output{}

	switch {
	case findAll > 0:
		results, err := vision.FindAll(templatePath, target, findAll, opts...)
		if err != nil {
			return err
		}
		for i, r := range results {
			results[i] = screen.AdjustMatchResult(r, meta)
		}
		out.Found = len(results) > 0
		out.Results = results

	case waitSec > 0:
		capture := func() (gocv.Mat, error) {
			mat, m, err := screen.CaptureMat(nil)
			meta = m
			return mat, err
		}
		opts = append(opts, vision.WithTimeout(time.Duration(waitSec)*time.Second))
		result, err := vision.WaitFor(context.Background(), templatePath, capture, opts...)
		if err != nil {
			return err
		}
		result = screen.AdjustMatchResult(result, meta)
		out.Found = result != nil
		out.Result = result

	default:
		result, err := vision.Find(templatePath, target, opts...)
		if err != nil {
			return err
		}
		if outputPath != "" && result != nil {
			if err := overlay.SaveMatchResult(target, result, outputPath); err != nil {
				fmt.Fprintf(os.Stderr, "[WARN] 保存可视化结果失败: %v\n", err)
			}
		}
		result = screen.AdjustMatchResult(result, meta)
		out.Found = result != nil
		out.Result = result
	}

	out.Elapsed = float64(time.Since(startTime).Milliseconds())

	if showStats {
		if usage, err := process.SelfUsage(); err == nil {
			out.Usage = usage
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化结果失败: %w", err)
	}
	fmt.Println(string(data))

	if !out.Found {
		os.Exit(1)
	}
	return nil
}

// buildOptions 将持久化配置转换为查找选项
func buildOptions(cfg *config.MatcherConfig) []vision.Option {
	return []vision.Option{
		vision.WithMethod(vision.Method(cfg.Method)),
		vision.WithCorrelationConfig(cfg.Correlation),
		vision.WithFeatureConfig(cfg.Feature),
		vision.WithHybridConfig(cfg.Hybrid),
	}
}

// loadTarget 加载目标图像，路径为空时截取全屏
func loadTarget(path string) (gocv.Mat, screen.CaptureMeta, error) {
	if path == "" {
		return screen.CaptureMat(nil)
	}
	mat, err := match.ReadImage(path)
	return mat, screen.CaptureMeta{ScaleX: 1, ScaleY: 1}, err
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("Identification Tester v%s\n", Version)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("Identification Tester - 图像匹配测试工具")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  identification-tester [选项]")
	fmt.Println()
	fmt.Println("选项:")
	fmt.Println("  -template string    模板图像路径 (必填)")
	fmt.Println("  -target string      目标图像路径 (为空时截取屏幕)")
	fmt.Println("  -method string      匹配方法: template / orb / hybrid")
	fmt.Println("  -threshold float    模板匹配阈值 (0,1]")
	fmt.Println("  -scale-steps int    多尺度匹配的步数 (>1 时启用)")
	fmt.Println("  -model string       混合匹配的检测模型路径 (ONNX)")
	fmt.Println("  -labels string      检测类别文件路径 (每行一个)")
	fmt.Println("  -find-all int       查找多个匹配 (仅 template 方法)")
	fmt.Println("  -wait int           等待屏幕出现匹配的超时秒数")
	fmt.Println("  -output string      匹配结果可视化保存路径")
	fmt.Println("  -log-level string   日志级别: DEBUG / INFO / WARN / ERROR")
	fmt.Println("  -stats              输出进程资源占用")
	fmt.Println("  -save               保存当前参数为默认配置")
	fmt.Println("  -version            显示版本信息")
	fmt.Println("  -help               显示帮助信息")
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  # 在截图文件中查找模板")
	fmt.Println("  identification-tester -template button.png -target screen.png")
	fmt.Println()
	fmt.Println("  # 特征点匹配并保存可视化结果")
	fmt.Println("  identification-tester -template logo.png -target photo.png -method orb -output result.png")
	fmt.Println()
	fmt.Println("  # 等待屏幕出现模板 (最多 30 秒)")
	fmt.Println("  identification-tester -template dialog.png -wait 30")
	fmt.Println()
	fmt.Printf("配置文件位置: %s\n", config.GetDefaultManager().GetConfigFile())
}
