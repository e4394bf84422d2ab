// 创建初始管理员账号脚本
//
// 全新部署时数据库中没有任何管理员，注册审批流程无法启动，
// 用此脚本写入第一个管理员账号。
//
// 用法: go run scripts/create_admin.go -email admin@aru.ac.uk -password <密码> -name "Site Admin"

package main

import (
	"aru_academy_backend/internal/config"
	"aru_academy_backend/internal/model"
	"aru_academy_backend/pkg/database"
	"aru_academy_backend/pkg/logger"
	"flag"
	"log"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	email := flag.String("email", "", "管理员邮箱")
	password := flag.String("password", "", "管理员密码")
	name := flag.String("name", "Administrator", "管理员姓名")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("必须指定 -email 和 -password")
	}
	if len(*password) < 8 {
		log.Fatal("密码至少8位")
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}

	logger.InitLogger(cfg)

	// 脚本假定迁移已完成，不重复建表
	db, err := database.InitDB(&cfg.Database, false)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	var existing model.User
	if err := db.Where("email = ?", *email).First(&existing).Error; err == nil {
		log.Fatalf("邮箱 %s 已被注册", *email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("密码加密失败: %v", err)
	}

	// 默认挂到第一个院系
	var department model.Department
	if err := db.Order("id asc").First(&department).Error; err != nil {
		log.Fatalf("无可用院系，请先完成数据库迁移: %v", err)
	}

	admin := &model.User{
		Name:         *name,
		Email:        *email,
		Password:     string(hash),
		Role:         model.Admin,
		DepartmentID: department.ID,
		Status:       model.StatusActive,
	}
	if err := db.Create(admin).Error; err != nil {
		log.Fatalf("创建管理员失败: %v", err)
	}

	log.Printf("管理员 %s (%s) 创建成功", *name, *email)
}
