package database

import (
	"fmt"
	"strings"

	"github.com/dkenzhe/curator/app/filters"
)

// Columns the local catalog can match a canonical facet against. The epoch
// facet is intentionally absent: it only narrows results through its resolved
// year range, never through string equality.
var facetColumns = map[string]string{
	filters.FacetGenre:    "genre",
	filters.FacetMood:     "mood",
	filters.FacetCriteria: "criteria",
}

const searchResultLimit = 10

// contentRepository handles database operations for harvested catalog content
type contentRepository struct {
	db *DB
}

func NewContentRepository(db *DB) ContentRepository {
	return &contentRepository{db: db}
}

// Search runs a three-tier lookup against the local catalog. Tier one demands
// every filter at once and only counts when it fills a full page; tier two
// relaxes the facet conditions to a disjunction; tier three drops the facets
// entirely so the caller always gets something as long as the kind has rows.
// A resolved year range restricts all three tiers and never joins the
// tier-two disjunction.
func (r *contentRepository) Search(kind string, cf filters.CanonicalFilters, excludeIDs []int64) ([]ContentItem, error) {
	facets, facetArgs := buildFacetConditions(cf)

	var yearClause string
	var yearArgs []interface{}
	if cf.Years != nil {
		yearClause = "(year >= ? AND year <= ?)"
		yearArgs = []interface{}{cf.Years.Min, cf.Years.Max}
	}

	if len(facets) > 0 || yearClause != "" {
		clause, args := withYearRange(strings.Join(facets, " AND "), facetArgs, yearClause, yearArgs)
		items, err := r.query(kind, clause, args, excludeIDs, 50)
		if err != nil {
			return nil, err
		}
		if len(items) >= searchResultLimit {
			return items[:searchResultLimit], nil
		}
	}

	if len(facets) > 1 {
		clause, args := withYearRange("("+strings.Join(facets, " OR ")+")", facetArgs, yearClause, yearArgs)
		items, err := r.query(kind, clause, args, excludeIDs, 50)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 {
			if len(items) > searchResultLimit {
				items = items[:searchResultLimit]
			}
			return items, nil
		}
	}

	return r.query(kind, yearClause, yearArgs, excludeIDs, searchResultLimit)
}

// buildFacetConditions translates a normalized filter set into SQL fragments.
// Facets without a backing column are dropped rather than rejected.
func buildFacetConditions(cf filters.CanonicalFilters) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}

	for _, facet := range []string{filters.FacetGenre, filters.FacetMood, filters.FacetCriteria} {
		value := cf.Value(facet)
		if value == "" {
			continue
		}
		conditions = append(conditions, fmt.Sprintf("LOWER(%s) = LOWER(?)", facetColumns[facet]))
		args = append(args, value)
	}

	return conditions, args
}

func withYearRange(facetClause string, facetArgs []interface{}, yearClause string, yearArgs []interface{}) (string, []interface{}) {
	if facetClause == "" {
		return yearClause, yearArgs
	}
	if yearClause == "" {
		return facetClause, facetArgs
	}
	args := append(append([]interface{}{}, facetArgs...), yearArgs...)
	return facetClause + " AND " + yearClause, args
}

func (r *contentRepository) query(kind string, filterClause string, filterArgs []interface{}, excludeIDs []int64, limit int) ([]ContentItem, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, type, title, COALESCE(creator, ''), COALESCE(description, ''),
			COALESCE(description_en, ''), COALESCE(description_ru, ''), COALESCE(description_kk, ''),
			COALESCE(image_url, ''), COALESCE(year, 0), COALESCE(rating, 0),
			COALESCE(genre, ''), COALESCE(mood, ''), COALESCE(epoch, ''), COALESCE(criteria, ''),
			COALESCE(duration, ''), COALESCE(source_id, '')
		FROM content
		WHERE type = ?`)

	args := []interface{}{kind}
	if filterClause != "" {
		sb.WriteString(" AND " + filterClause)
		args = append(args, filterArgs...)
	}
	if len(excludeIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(excludeIDs)), ", ")
		sb.WriteString(" AND id NOT IN (" + placeholders + ")")
		for _, id := range excludeIDs {
			args = append(args, id)
		}
	}
	sb.WriteString(" ORDER BY RANDOM() LIMIT ?")
	args = append(args, limit)

	rows, err := r.db.Query(sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search content: %w", err)
	}
	defer rows.Close()

	var items []ContentItem
	for rows.Next() {
		var item ContentItem
		err := rows.Scan(&item.ID, &item.Type, &item.Title, &item.Creator, &item.Description,
			&item.DescriptionEN, &item.DescriptionRU, &item.DescriptionKK,
			&item.ImageURL, &item.Year, &item.Rating,
			&item.Genre, &item.Mood, &item.Epoch, &item.Criteria,
			&item.Duration, &item.SourceID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate content items: %w", err)
	}

	return items, nil
}

// GetContentCount returns the total number of harvested items
func (r *contentRepository) GetContentCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM content").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get content count: %w", err)
	}
	return count, nil
}

// GetContentCountByType returns item counts keyed by content type
func (r *contentRepository) GetContentCountByType() (map[string]int, error) {
	rows, err := r.db.Query("SELECT type, COUNT(*) FROM content GROUP BY type")
	if err != nil {
		return nil, fmt.Errorf("failed to get content counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var contentType string
		var count int
		if err := rows.Scan(&contentType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan content count: %w", err)
		}
		counts[contentType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate content counts: %w", err)
	}

	return counts, nil
}
