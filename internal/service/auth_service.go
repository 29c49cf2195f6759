package service

import (
	"encoding/json"
	"errors"

	"quiz_admin_backend/internal/config"
	"quiz_admin_backend/internal/model"
	"quiz_admin_backend/internal/repository"
	"quiz_admin_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PasswordComparer 口令比对边界，便于替换实现
type PasswordComparer interface {
	Compare(stored, supplied string) bool
}

// PlainComparer 名单文件里的口令是明文，按原样等值比较。
// 已知弱点，保留接口以便切换到哈希比对。
type PlainComparer struct{}

func (PlainComparer) Compare(stored, supplied string) bool {
	return stored == supplied
}

// BcryptComparer 哈希存储时的替代实现
type BcryptComparer struct{}

func (BcryptComparer) Compare(stored, supplied string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
}

type AuthService struct {
	StudentRepo *repository.StudentRepository
	UsageRepo   *repository.AIUsageRepository
	ScoreRepo   *repository.ScoreRepository
	Comparer    PasswordComparer
	Cfg         *config.Config
}

func NewAuthService(
	studentRepo *repository.StudentRepository,
	usageRepo *repository.AIUsageRepository,
	scoreRepo *repository.ScoreRepository,
	comparer PasswordComparer,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		StudentRepo: studentRepo,
		UsageRepo:   usageRepo,
		ScoreRepo:   scoreRepo,
		Comparer:    comparer,
		Cfg:         cfg,
	}
}

// Login 校验口令，成功后幂等地建好两份台账并签发token。
// 同一学生重复登录不会重置答题进度和已消耗的AI配额。
func (s *AuthService) Login(username, password string) (*model.Student, string, error) {
	student, err := s.StudentRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", util.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !s.Comparer.Compare(student.Password, password) {
		return nil, "", util.ErrInvalidCredentials
	}

	if err := s.UsageRepo.EnsureRecord(username); err != nil {
		return nil, "", err
	}
	if err := s.ScoreRepo.EnsureRecord(username); err != nil {
		return nil, "", err
	}

	token, err := util.GenerateJWT(student, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, "", err
	}
	return student, token, nil
}

// rosterFile 学生名单文件结构：{"students":[{"username":...,"password":...}]}
type rosterFile struct {
	Students []struct {
		Username string `json:"username"`
		Password string `json:"password"`
	} `json:"students"`
}

// ImportRosterJSON 启动时导入学生名单，返回导入条数
func (s *AuthService) ImportRosterJSON(data []byte) (int, error) {
	var roster rosterFile
	if err := json.Unmarshal(data, &roster); err != nil {
		return 0, err
	}

	students := make([]model.Student, 0, len(roster.Students))
	for _, entry := range roster.Students {
		if entry.Username == "" {
			continue
		}
		students = append(students, model.Student{
			Username: entry.Username,
			Password: entry.Password,
		})
	}

	if err := s.StudentRepo.ImportRoster(students); err != nil {
		return 0, err
	}
	return len(students), nil
}
