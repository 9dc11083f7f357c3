package common

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// Round1 四捨五入到小數一位
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// RoundTo 以 step 為單位四捨五入（例如 0.25、0.5）
func RoundTo(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}

// Normalize 名稱比對用：去空白、轉小寫
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ContainsFold 不分大小寫判斷 list 是否包含 s
func ContainsFold(list []string, s string) bool {
	target := Normalize(s)
	for _, item := range list {
		if Normalize(item) == target {
			return true
		}
	}
	return false
}
