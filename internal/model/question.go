// Package model 定义了与数据库表对应的 Go 结构体。
package model

// Question 对应于数据库中的 'questions' 表，题目在初始化后不再修改。
type Question struct {
	ID   uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Text string `gorm:"type:text;not null" json:"text"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Question) TableName() string {
	return "questions"
}

// UserResponse 对应于 'user_responses' 表，记录某个匿名会话对某道题的作答。
type UserResponse struct {
	ID            uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID     string `gorm:"type:varchar(64);index;not null" json:"session_id"`
	QuestionID    uint   `gorm:"not null" json:"question_id"`
	ResponseValue int    `gorm:"not null" json:"response_value"` // 1-5 李克特量表

	Question Question `gorm:"foreignKey:QuestionID" json:"-"`
}

func (UserResponse) TableName() string {
	return "user_responses"
}
