// Package report builds user reports from the database and renders them as
// JSON, Excel workbooks and PDF documents. The aggregate summary is cached
// for a short window because it is the most requested view and its inputs
// change rarely.
package report

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/borntodev-academy/go-auth-api/internal/db/models"
)

// DefaultSummaryCacheTTL is how long a computed summary stays valid when no
// TTL is configured.
const DefaultSummaryCacheTTL = 30 * time.Second

// recentUserCount is how many of the newest accounts a summary lists.
const recentUserCount = 5

// Summary is the aggregate view over all user accounts.
type Summary struct {
	TotalUsers    int64         `json:"total_users"`
	ActiveUsers   int64         `json:"active_users"`
	AdminCount    int64         `json:"admin_count"`
	ManagerCount  int64         `json:"manager_count"`
	UserCount     int64         `json:"user_count"`
	RecentUsers   []models.User `json:"recent_users"`
	GeneratedAt   time.Time     `json:"generated_at"`
}

// Service computes user reports. Safe for concurrent use.
type Service struct {
	db       *gorm.DB
	cacheTTL time.Duration

	mu       sync.Mutex
	cached   *Summary
	cachedAt time.Time

	// now is swapped out in tests to control cache expiry.
	now func() time.Time
}

// New creates a report service. A zero cacheTTL falls back to
// DefaultSummaryCacheTTL.
func New(db *gorm.DB, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = DefaultSummaryCacheTTL
	}

	return &Service{
		db:       db,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// Users returns all user accounts, newest first.
func (s *Service) Users() ([]models.User, error) {
	var users []models.User

	if err := s.db.Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "failed to query users")
	}

	return users, nil
}

// Summary returns the aggregate summary, recomputing it at most once per
// cache window.
func (s *Service) Summary() (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.cached != nil && now.Sub(s.cachedAt) < s.cacheTTL {
		return s.cached, nil
	}

	summary, err := s.computeSummary(now)
	if err != nil {
		return nil, err
	}

	s.cached = summary
	s.cachedAt = now

	return summary, nil
}

func (s *Service) computeSummary(now time.Time) (*Summary, error) {
	summary := &Summary{GeneratedAt: now}

	if err := s.db.Model(&models.User{}).Count(&summary.TotalUsers).Error; err != nil {
		return nil, errors.Wrap(err, "failed to count users")
	}

	if err := s.db.Model(&models.User{}).Where("active = ?", true).
		Count(&summary.ActiveUsers).Error; err != nil {
		return nil, errors.Wrap(err, "failed to count active users")
	}

	roleCounts := map[models.Role]*int64{
		models.RoleAdmin:   &summary.AdminCount,
		models.RoleManager: &summary.ManagerCount,
		models.RoleUser:    &summary.UserCount,
	}

	for role, target := range roleCounts {
		if err := s.db.Model(&models.User{}).Where("role = ?", role).
			Count(target).Error; err != nil {
			return nil, errors.Wrapf(err, "failed to count users with role %s", role)
		}
	}

	if err := s.db.Order("created_at DESC, id DESC").Limit(recentUserCount).
		Find(&summary.RecentUsers).Error; err != nil {
		return nil, errors.Wrap(err, "failed to query recent users")
	}

	return summary, nil
}
