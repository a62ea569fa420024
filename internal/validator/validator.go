package validator

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// 输入校验层：每个写操作对应一组按声明顺序执行的字段规则。
// 任何一条不通过都会阻止操作进入业务逻辑，并把全部失败项一次性返回，
// 而不是只报第一个错。

// FieldError 单个字段的校验失败
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Checker 对单个字段值做一项检查，通过返回空串，否则返回提示文案
type Checker func(value string) string

// Field 一个字段与它的有序规则列表
type Field struct {
	Name   string
	Value  string
	Checks []Checker
}

// Validate 依次执行所有字段规则，收集全部失败项
// 同一字段在第一条规则失败后不再执行后续规则（提示更聚焦），
// 但不同字段之间互不影响。
func Validate(fields ...Field) []FieldError {
	var errs []FieldError
	for _, f := range fields {
		for _, check := range f.Checks {
			if msg := check(f.Value); msg != "" {
				errs = append(errs, FieldError{Field: f.Name, Message: msg})
				break
			}
		}
	}
	return errs
}

var (
	accountPattern       = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	telephonePattern     = regexp.MustCompile(`^1[3-9]\d{9}$`)
	transactionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]{6}$`)
	emailPattern         = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Required 非空
func Required(msg string) Checker {
	return func(value string) string {
		if strings.TrimSpace(value) == "" {
			return msg
		}
		return ""
	}
}

// Length 字符数范围（按 rune 计，角色名等中文字段需要）
func Length(min, max int, msg string) Checker {
	return func(value string) string {
		n := len([]rune(value))
		if n < min || n > max {
			return msg
		}
		return ""
	}
}

// MaxLength 字符数上限
func MaxLength(max int, msg string) Checker {
	return func(value string) string {
		if len([]rune(value)) > max {
			return msg
		}
		return ""
	}
}

// Match 正则匹配
func Match(pattern *regexp.Regexp, msg string) Checker {
	return func(value string) string {
		if !pattern.MatchString(value) {
			return msg
		}
		return ""
	}
}

// Account 账号格式：5-12位字母、数字、下划线
func Account() []Checker {
	return []Checker{
		Required("请输入账号"),
		Length(5, 12, "账号长度必须在5-12个字符之间"),
		Match(accountPattern, "账号只能包含字母、数字和下划线"),
	}
}

// Password 密码格式：6-20位
func Password() []Checker {
	return []Checker{
		Required("请输入密码"),
		Length(6, 20, "密码长度必须在6-20个字符之间"),
	}
}

// Email 邮箱格式
func Email(msg string) Checker {
	return Match(emailPattern, msg)
}

// Telephone 大陆手机号
func Telephone(msg string) Checker {
	return Match(telephonePattern, msg)
}

// TransactionID 交易单号：6位字母数字
func TransactionID() []Checker {
	return []Checker{
		Required("请输入交易单号"),
		Match(transactionIDPattern, "交易单号必须为6位字母或数字"),
	}
}

// Equals 与另一个字段的值一致（确认密码）
func Equals(other, msg string) Checker {
	return func(value string) string {
		if value != other {
			return msg
		}
		return ""
	}
}

// In 取值必须在给定集合内
func In(set []string, msg string) Checker {
	return func(value string) string {
		for _, s := range set {
			if value == s {
				return ""
			}
		}
		return msg
	}
}

// PositiveAmount 金额必须是大于 0 的数字
func PositiveAmount(msg string) Checker {
	return func(value string) string {
		amount, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil || amount.Cmp(decimal.Zero) <= 0 {
			return msg
		}
		return ""
	}
}

// Datetime 可解析的时间（登记页提交的本地时间，或带时区的 ISO 时间）
func Datetime(msg string) Checker {
	layouts := []string{
		"2006-01-02T15:04",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	return func(value string) string {
		for _, layout := range layouts {
			if _, err := time.Parse(layout, value); err == nil {
				return ""
			}
		}
		return msg
	}
}

// Date 出生日期等纯日期字段
func Date(msg string) Checker {
	return func(value string) string {
		if _, err := time.Parse("2006-01-02", value); err != nil {
			return msg
		}
		return ""
	}
}

// Optional 空值直接放行，非空才执行后续规则
func Optional(checks ...Checker) Checker {
	return func(value string) string {
		if strings.TrimSpace(value) == "" {
			return ""
		}
		for _, check := range checks {
			if msg := check(value); msg != "" {
				return msg
			}
		}
		return ""
	}
}

// Items 付款项：至少选一项，且都在目录内
func Items(items []string, catalog []string) []FieldError {
	if len(items) == 0 {
		return []FieldError{{Field: "items", Message: "请至少选择一项付款项"}}
	}
	valid := make(map[string]bool, len(catalog))
	for _, c := range catalog {
		valid[c] = true
	}
	for _, item := range items {
		if !valid[item] {
			return []FieldError{{Field: "items", Message: "付款项不在可选目录内"}}
		}
	}
	return nil
}
