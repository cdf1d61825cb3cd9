package database

import (
	"fmt"
	"log"
	"questionnaire_backend/internal/config"
	"questionnaire_backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")
	return db, nil
}

// Migrate 建表并写入示例数据
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.UserRoles{},
		&model.Questionnaire{},
		&model.Question{},
		&model.QuestionnaireJunction{},
		&model.AnswerSet{},
		&model.Answer{},
	)
	if err != nil {
		return err
	}

	log.Println("Database migration completed")
	return seed(db)
}

func seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Questionnaire{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		q := &model.Questionnaire{Name: "Onboarding survey"}
		if err := tx.Create(q).Error; err != nil {
			return err
		}

		questions := []model.Question{
			{Question: model.QuestionBody{Type: model.QuestionTypeText, Question: "What do you expect from this program?"}},
			{Question: model.QuestionBody{
				Type:     model.QuestionTypeMCQ,
				Question: "Which topics interest you?",
				Options:  []string{"Backend", "Frontend", "Data", "Operations"},
			}},
		}
		if err := tx.Create(&questions).Error; err != nil {
			return err
		}

		for i, question := range questions {
			junction := &model.QuestionnaireJunction{
				QuestionnaireID: q.ID,
				QuestionID:      question.ID,
				Priority:        i + 1,
			}
			if err := tx.Create(junction).Error; err != nil {
				return err
			}
		}

		// 默认管理员，仅在全新库中创建
		var users int64
		if err := tx.Model(&model.User{}).Count(&users).Error; err != nil {
			return err
		}
		if users > 0 {
			return nil
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte("admin123456"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin := &model.User{Email: "admin@example.com", Password: string(hashed)}
		if err := tx.Create(admin).Error; err != nil {
			return err
		}
		return tx.Create(&model.UserRoles{UserID: admin.ID, Roles: model.Roles{model.RoleAdmin, model.RoleUser}}).Error
	})
}
