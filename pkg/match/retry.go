package match

import (
	"context"
	"time"

	"github.com/1ajie1/identification-tester/internal/logger"
)

// Run 按策略执行匹配尝试
//
// attempt 返回 (nil, nil) 表示本次未找到匹配，延迟后重试；
// 输入错误立即返回，不重试；其他错误视为瞬时失败，同样重试。
// 取消只在重试边界生效：进行中的尝试会执行完毕，下一次重试被抑制。
func (p RetryPolicy) Run(ctx context.Context, attempt func() (*MatchResult, error)) (*MatchResult, error) {
	attempts := max(p.MaxRetries, 1)

	for i := 0; i < attempts; i++ {
		result, err := attempt()
		if err != nil {
			if IsInputError(err) {
				return nil, err
			}
			logger.Debug("匹配尝试 %d/%d 出错: %v", i+1, attempts, err)
		} else if result != nil {
			return result, nil
		} else {
			logger.Debug("匹配尝试 %d/%d 未找到匹配", i+1, attempts)
		}

		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.Delay):
		}
	}

	// 所有尝试用尽：瞬时失败表现为"未找到匹配"而不是错误
	return nil, nil
}
