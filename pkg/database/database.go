package database

import (
	"aru_academy_backend/internal/config"
	"aru_academy_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 建立连接，migrate为true时执行自动迁移并初始化默认院系
func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if !migrate {
		return db, nil
	}

	err = db.AutoMigrate(
		&model.Department{},
		&model.User{},
		&model.ApprovedUser{},
		&model.Course{},
		&model.Resource{},
		&model.Progress{},
		&model.Quiz{},
		&model.QuizQuestion{},
		&model.QuizSubmission{},
		&model.AiCallLog{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 默认院系（为空时初始化）
	var count int64
	db.Model(&model.Department{}).Count(&count)
	if count == 0 {
		defaultDepartments := []model.Department{
			{Name: "Computer Science", Description: "Computing, software engineering and data science"},
			{Name: "Engineering", Description: "Mechanical, electrical and civil engineering"},
			{Name: "Business", Description: "Management, finance and economics"},
			{Name: "Medicine", Description: "Medical and health sciences"},
		}
		for _, d := range defaultDepartments {
			db.Create(&d)
		}
	}

	return db, nil
}
