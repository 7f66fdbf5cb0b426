package util

// 审核相关默认阈值，可被配置覆盖
const (
	DefaultMinReviewComment  = 20
	DefaultMinImprovementLen = 10
	DefaultLanguage          = "en"
)

// Percentage round(100*K/N)，N=0 时返回 0
func Percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(float64(completed)/float64(total)*100 + 0.5)
}
