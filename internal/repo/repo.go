package repo

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/linkface/linkface/internal/models"
)

// Store wraps the flat CRUD queries for employees and submissions. All
// operations are single statements; referential integrity between a
// submission's employee token and the employees table is intentionally not
// enforced here.
type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) FindEmployeeByToken(token string) (*models.Employee, error) {
	var e models.Employee
	err := s.DB.Where("token = ?", token).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) CreateEmployee(e *models.Employee) error {
	return s.DB.Create(e).Error
}

func (s *Store) ListEmployees() ([]models.Employee, error) {
	var employees []models.Employee
	err := s.DB.Order("created_at DESC").Find(&employees).Error
	return employees, err
}

func (s *Store) InsertSubmission(sub *models.Submission) error {
	return s.DB.Create(sub).Error
}

func (s *Store) ListSubmissions(limit, offset int, employeeToken string) ([]models.Submission, error) {
	q := s.DB.Model(&models.Submission{})
	if employeeToken != "" {
		q = q.Where("employee_token = ?", employeeToken)
	}

	var subs []models.Submission
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&subs).Error
	return subs, err
}

func (s *Store) SearchSubmissions(term string, limit int) ([]models.Submission, error) {
	like := "%" + term + "%"
	var subs []models.Submission
	err := s.DB.Where("name LIKE ? OR cpf LIKE ?", like, like).
		Order("created_at DESC").
		Limit(limit).
		Find(&subs).Error
	return subs, err
}

func (s *Store) GetSubmissionByID(id uint) (*models.Submission, error) {
	var sub models.Submission
	err := s.DB.First(&sub, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

type TokenCount struct {
	EmployeeToken string `json:"employee_token"`
	Count         int64  `json:"count"`
}

type Stats struct {
	Total      int64        `json:"total"`
	Today      int64        `json:"today"`
	ByEmployee []TokenCount `json:"byEmployee"`
}

func (s *Store) SubmissionStats() (*Stats, error) {
	stats := &Stats{}

	if err := s.DB.Model(&models.Submission{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := s.DB.Model(&models.Submission{}).
		Where("created_at >= ?", startOfDay).
		Count(&stats.Today).Error; err != nil {
		return nil, err
	}

	err := s.DB.Model(&models.Submission{}).
		Select("employee_token, COUNT(*) as count").
		Where("employee_token <> ''").
		Group("employee_token").
		Order("count DESC").
		Scan(&stats.ByEmployee).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}
