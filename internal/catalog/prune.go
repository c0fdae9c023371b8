package catalog

import (
	"github.com/mrlokans/bookshelf/internal/database/authors"
	"github.com/mrlokans/bookshelf/internal/database/topics"
)

// pruneAuthors deletes every author without a book link and returns their ids.
func pruneAuthors(repo *authors.Repository) ([]uint, error) {
	ids, err := repo.OrphanIDs()
	if err != nil {
		return nil, err
	}
	if _, err := repo.DeleteByIDs(ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// pruneTopics deletes every topic without a book link and returns their ids.
func pruneTopics(repo *topics.Repository) ([]uint, error) {
	ids, err := repo.OrphanIDs()
	if err != nil {
		return nil, err
	}
	if _, err := repo.DeleteByIDs(ids); err != nil {
		return nil, err
	}
	return ids, nil
}
