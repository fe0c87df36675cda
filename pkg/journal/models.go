package journal

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// 操作类型
const (
	KindZip   = "zip"
	KindUnzip = "unzip"
	KindPush  = "push"
	KindPull  = "pull"
)

// 操作结果
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Operation 是一条操作记录
type Operation struct {
	ID uint `gorm:"primaryKey"`

	Kind      string `gorm:"index;type:varchar(16);not null"`
	Input     string `gorm:"type:text"`
	Output    string `gorm:"type:text"`
	Algorithm string `gorm:"type:varchar(16)"` // zip 时的算法，unzip 时探测到的格式
	Bytes     int64

	Status    string `gorm:"index;type:varchar(16);not null"`
	ErrorKind string `gorm:"type:varchar(32)"`
	Detail    string `gorm:"type:text"`

	DurationMs int64

	// 附加信息，例如 push 的清单 Hash
	Meta datatypes.JSON

	CreatedAt time.Time `gorm:"index"`
}

func (Operation) TableName() string {
	return "operations"
}

// Duration 把毫秒数还原成 time.Duration
func (o Operation) Duration() time.Duration {
	return time.Duration(o.DurationMs) * time.Millisecond
}

// SetMeta 把任意 map 序列化进 Meta 列
func (o *Operation) SetMeta(meta map[string]any) error {
	if len(meta) == 0 {
		o.Meta = nil
		return nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	o.Meta = datatypes.JSON(data)
	return nil
}
