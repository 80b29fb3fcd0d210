package core

// 与 time.Weekday.String() 的取值一致
var weekdayNames = [...]string{
	0: "Sunday",
	1: "Monday",
	2: "Tuesday",
	3: "Wednesday",
	4: "Thursday",
	5: "Friday",
	6: "Saturday",
}

// WeekdayName 返回 0-6 对应的星期名称
func WeekdayName(day int) (string, bool) {
	if day < 0 || day >= len(weekdayNames) {
		return "", false
	}
	return weekdayNames[day], true
}

// Weekdays 按 0-6 顺序返回全部星期名称
func Weekdays() []string {
	names := make([]string, len(weekdayNames))
	copy(names, weekdayNames[:])
	return names
}
