package types

// StringPtr 返回字符串指针，用于构造用户配置
func StringPtr(s string) *string { return &s }

// BoolPtr 返回布尔指针
func BoolPtr(b bool) *bool { return &b }

// IntPtr 返回整数指针
func IntPtr(i int) *int { return &i }

// Uint64Ptr 返回 uint64 指针
func Uint64Ptr(v uint64) *uint64 { return &v }
