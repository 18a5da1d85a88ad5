package util

import (
	"fmt"
	"time"
)

// DateLayout 全系统统一的日期格式
const DateLayout = "2006-01-02"

// ValidateDate 验证日期格式（必须为 YYYY-MM-DD）
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	t, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	// time.Parse 会把 2024-02-30 归一化，反向格式化兜底
	if t.Format(DateLayout) != dateStr {
		return fmt.Errorf("invalid date: %s", dateStr)
	}
	return nil
}

// ValidateDateRange 验证日期范围，开始日期不能晚于结束日期
func ValidateDateRange(startDate, endDate string) error {
	if err := ValidateDate(startDate); err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	if err := ValidateDate(endDate); err != nil {
		return fmt.Errorf("end date: %w", err)
	}
	if startDate > endDate {
		return fmt.Errorf("start date %s is after end date %s", startDate, endDate)
	}
	return nil
}

// DateRange 枚举 [startDate, endDate] 闭区间内的每一个自然日
// 两端日期必须已通过 ValidateDateRange
func DateRange(startDate, endDate string) []string {
	start, err := time.Parse(DateLayout, startDate)
	if err != nil {
		return nil
	}
	end, err := time.Parse(DateLayout, endDate)
	if err != nil {
		return nil
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates
}

// DaysBetween 计算两个日期之间的天数（不含起始日）
func DaysBetween(startDate, endDate string) int {
	start, err1 := time.Parse(DateLayout, startDate)
	end, err2 := time.Parse(DateLayout, endDate)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(end.Sub(start).Hours() / 24)
}

// CurrentDate 返回今天的 YYYY-MM-DD
func CurrentDate() string {
	return time.Now().Format(DateLayout)
}

// DaysAgo 返回 n 天前的 YYYY-MM-DD
func DaysAgo(n int) string {
	return time.Now().AddDate(0, 0, -n).Format(DateLayout)
}
