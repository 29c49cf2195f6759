package repository

import (
	"quiz_admin_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

func (r *StudentRepository) FindByUsername(username string) (*model.Student, error) {
	var student model.Student
	err := r.DB.Where("username = ?", username).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// ImportRoster 导入学生名单，已存在的用户名跳过，重启不会覆盖
func (r *StudentRepository) ImportRoster(students []model.Student) error {
	if len(students) == 0 {
		return nil
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoNothing: true,
	}).Create(&students).Error
}
