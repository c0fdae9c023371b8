package topics

import (
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository provides topic persistence. Build it on a transaction handle to
// take part in a catalog write.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a topic. The caller is responsible for a unique slug.
func (r *Repository) Create(topic *entities.Topic) error {
	return r.db.Create(topic).Error
}

// GetByID retrieves a topic by ID.
func (r *Repository) GetByID(id uint) (*entities.Topic, error) {
	var topic entities.Topic
	if err := r.db.First(&topic, id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

// GetBySlug retrieves a topic by its slug.
func (r *Repository) GetBySlug(slug string) (*entities.Topic, error) {
	var topic entities.Topic
	if err := r.db.Where("slug = ?", slug).Order("id").First(&topic).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

// FindByName returns the oldest topic with exactly this name.
func (r *Repository) FindByName(name string) (*entities.Topic, error) {
	var topic entities.Topic
	if err := r.db.Where("name = ?", name).Order("id").First(&topic).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

// List returns all topics ordered by name.
func (r *Repository) List() ([]entities.Topic, error) {
	var topics []entities.Topic
	err := r.db.Order("name ASC, id ASC").Find(&topics).Error
	return topics, err
}

// Slugs returns every topic slug except the one of excludeID (0 excludes nothing).
func (r *Repository) Slugs(excludeID uint) ([]string, error) {
	var slugs []string
	query := r.db.Model(&entities.Topic{})
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Pluck("slug", &slugs).Error
	return slugs, err
}

// Rename stores a new name and slug for the topic.
func (r *Repository) Rename(topic *entities.Topic, name, slug string) error {
	return r.db.Model(topic).Updates(map[string]any{
		"name": name,
		"slug": slug,
	}).Error
}

// Delete removes a single topic row. Link rows are left to the caller.
func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&entities.Topic{}, id).Error
}

// OrphanIDs returns topics that no book links to.
func (r *Repository) OrphanIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Raw(`
		SELECT id FROM topics
		WHERE id NOT IN (SELECT topic_id FROM book_topics)
		ORDER BY id
	`).Scan(&ids).Error
	return ids, err
}

// DeleteByIDs removes the given topics and reports how many rows went away.
func (r *Repository) DeleteByIDs(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Where("id IN ?", ids).Delete(&entities.Topic{})
	return result.RowsAffected, result.Error
}

// DuplicateSlugs lists slugs shared by more than one topic.
func (r *Repository) DuplicateSlugs() ([]string, error) {
	var slugs []string
	err := r.db.Model(&entities.Topic{}).
		Group("slug").
		Having("COUNT(*) > 1").
		Pluck("slug", &slugs).Error
	return slugs, err
}
