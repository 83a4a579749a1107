package service

import (
	"context"
	"strings"

	"github.com/d60-Lab/content-engine/internal/repository"
)

// KeywordMerger 把原始关键词列表对受控词表做合并
// allowed 是放行子集，merged 是归一化去重后的全集（用于词表补录）
type KeywordMerger interface {
	Merge(ctx context.Context, raw []string) (allowed, merged []string, err error)
}

type vocabularyMerger struct {
	repo repository.KeywordRepository
}

func NewVocabularyMerger(repo repository.KeywordRepository) KeywordMerger {
	return &vocabularyMerger{repo: repo}
}

func (m *vocabularyMerger) Merge(ctx context.Context, raw []string) ([]string, []string, error) {
	merged := normalizeKeywords(raw)
	if len(merged) == 0 {
		return nil, nil, nil
	}
	allowed, err := m.repo.AllowedSubset(ctx, merged)
	if err != nil {
		return nil, nil, err
	}
	return allowed, merged, nil
}

func normalizeKeywords(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, k := range raw {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func splitTags(tagsStr string) []string {
	if tagsStr == "" {
		return nil
	}
	return strings.Split(tagsStr, ",")
}
