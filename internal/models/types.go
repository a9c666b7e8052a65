package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// JSON 通用 JSON 对象类型
type JSON map[string]interface{}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := normalizeJSONBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// StringArray 字符串数组类型，用于存储证据附件等
type StringArray []string

// Value 实现 driver.Valuer 接口
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}
	bytes, ok := normalizeJSONBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// UintArray 无符号整型数组，用于会话挂载的订单 ID 列表
type UintArray []uint

// Value 实现 driver.Valuer 接口
func (a UintArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan 实现 sql.Scanner 接口
func (a *UintArray) Scan(value interface{}) error {
	if value == nil {
		*a = UintArray{}
		return nil
	}
	bytes, ok := normalizeJSONBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// Contains 判断是否包含指定 ID
func (a UintArray) Contains(id uint) bool {
	for _, v := range a {
		if v == id {
			return true
		}
	}
	return false
}

// StaffRef 员工引用快照（ID + 展示名），用于责任链留档
// 留档后不再随员工表变更，员工改名/离职不影响历史记录
type StaffRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// StaffRefArray 员工引用快照数组
type StaffRefArray []StaffRef

// Value 实现 driver.Valuer 接口
func (s StaffRefArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *StaffRefArray) Scan(value interface{}) error {
	if value == nil {
		*s = StaffRefArray{}
		return nil
	}
	bytes, ok := normalizeJSONBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Contains 判断是否已包含指定员工
func (s StaffRefArray) Contains(id uint) bool {
	for _, ref := range s {
		if ref.ID == id {
			return true
		}
	}
	return false
}

// TimelineEvent 损失工单时间线事件
type TimelineEvent struct {
	Event  string    `json:"event"`
	At     time.Time `json:"at"`
	ByID   uint      `json:"by_id"`
	ByName string    `json:"by_name"`
	Notes  string    `json:"notes,omitempty"`
}

// TimelineArray 时间线事件数组（追加写，不修改历史）
type TimelineArray []TimelineEvent

// Value 实现 driver.Valuer 接口
func (t TimelineArray) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

// Scan 实现 sql.Scanner 接口
func (t *TimelineArray) Scan(value interface{}) error {
	if value == nil {
		*t = TimelineArray{}
		return nil
	}
	bytes, ok := normalizeJSONBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, t)
}

func normalizeJSONBytes(value interface{}) ([]byte, bool) {
	switch v := value.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}
