package recommend

import (
	"fmt"
	"strconv"

	"github.com/dkenzhe/curator/app/database"
	"github.com/dkenzhe/curator/app/filters"
)

// API kinds are plural, stored content types are singular.
var kindContentTypes = map[Kind]string{
	KindBooks:  "book",
	KindMovies: "movie",
	KindMusic:  "music",
}

// LocalCatalog serves recommendations straight from the harvested content
// store. No generator involved: rows already carry localized descriptions, so
// the "why" is a lookup rather than a generation, and results are never
// cached because the exclusion set varies per request.
type LocalCatalog struct {
	repo database.ContentRepository
}

func NewLocalCatalog(repo database.ContentRepository) *LocalCatalog {
	return &LocalCatalog{repo: repo}
}

func (l *LocalCatalog) Recommend(kind Kind, cf filters.CanonicalFilters, excludeIDs []int64, locale string) (Result, error) {
	contentType, ok := kindContentTypes[kind]
	if !ok {
		return Result{}, fmt.Errorf("no content type for kind %q", kind)
	}

	items, err := l.repo.Search(contentType, cf, excludeIDs)
	if err != nil {
		return Result{}, fmt.Errorf("local catalog search failed: %w", err)
	}
	if len(items) == 0 {
		return Result{NothingFound: true}, nil
	}

	records := make([]Recommendation, 0, len(items))
	for _, item := range items {
		records = append(records, localRecommendation(kind, item, locale))
	}
	return Result{Records: records, Provenance: ProvenanceLocal}, nil
}

func localRecommendation(kind Kind, item database.ContentItem, locale string) Recommendation {
	rec := Recommendation{
		ID:     strconv.FormatInt(item.ID, 10),
		Title:  item.Title,
		Image:  item.ImageURL,
		Year:   item.Year,
		Rating: item.Rating,
		Why:    localDescription(item, locale),
	}
	switch kind {
	case KindBooks:
		rec.Author = item.Creator
	case KindMovies:
		rec.Genre = item.Genre
	case KindMusic:
		rec.Artist = item.Creator
		rec.Duration = item.Duration
	}
	return rec
}

func localDescription(item database.ContentItem, locale string) string {
	switch locale {
	case "en":
		if item.DescriptionEN != "" {
			return item.DescriptionEN
		}
	case "ru":
		if item.DescriptionRU != "" {
			return item.DescriptionRU
		}
	case "kk":
		if item.DescriptionKK != "" {
			return item.DescriptionKK
		}
	}
	if item.Description != "" {
		return item.Description
	}
	return "Great choice!"
}
