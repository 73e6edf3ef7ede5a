package model

// Game 对应于 'games' 表，由目录导入任务写入，推理阶段只读。
type Game struct {
	ID               uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FreeToGameID     int    `gorm:"uniqueIndex;not null;column:freetogame_id" json:"freetogame_id"`
	Title            string `gorm:"type:varchar(255);not null" json:"title"`
	Thumbnail        string `gorm:"type:varchar(512)" json:"thumbnail"`
	ShortDescription string `gorm:"type:text" json:"short_description"`
	GameURL          string `gorm:"type:varchar(512);column:game_url" json:"game_url"`
	Genre            string `gorm:"type:varchar(64);index" json:"genre"`
	Platform         string `gorm:"type:varchar(128)" json:"platform"`
	Publisher        string `gorm:"type:varchar(255)" json:"publisher"`
	Developer        string `gorm:"type:varchar(255)" json:"developer"`
	ReleaseDate      string `gorm:"type:varchar(32)" json:"release_date"`
	ProfileURL       string `gorm:"type:varchar(512);column:profile_url" json:"profile_url"`
	IsPopular        bool   `gorm:"not null;default:false" json:"is_popular"`
}

func (Game) TableName() string {
	return "games"
}

// GameDocument 定义了存储在 Elasticsearch 中的游戏文档结构。
type GameDocument struct {
	ID               uint   `json:"id"`
	FreeToGameID     int    `json:"freetogame_id"`
	Title            string `json:"title"`
	ShortDescription string `json:"short_description"`
	Genre            string `json:"genre"`
	Platform         string `json:"platform"`
	Publisher        string `json:"publisher"`
	Developer        string `json:"developer"`
	IsPopular        bool   `json:"is_popular"`
}

// NewGameDocument 将数据库记录转换为索引文档。
func NewGameDocument(g Game) GameDocument {
	return GameDocument{
		ID:               g.ID,
		FreeToGameID:     g.FreeToGameID,
		Title:            g.Title,
		ShortDescription: g.ShortDescription,
		Genre:            g.Genre,
		Platform:         g.Platform,
		Publisher:        g.Publisher,
		Developer:        g.Developer,
		IsPopular:        g.IsPopular,
	}
}
