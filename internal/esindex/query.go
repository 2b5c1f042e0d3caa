package esindex

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/devtrends/turnover/internal/errors"
	"github.com/devtrends/turnover/internal/models"
)

// maxAuthorBuckets bounds the terms aggregation cardinality. Large enough
// that no author bucket is ever truncated.
const maxAuthorBuckets = 10000000

// searchBody builds the aggregation request: commits before the start of
// the current year, bucketed by author_uuid, with the earliest hit and the
// maximum commit date per bucket. Commit dates live in author_date.
func searchBody() map[string]interface{} {
	return map[string]interface{}{
		"size": 0,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{
						"range": map[string]interface{}{
							"grimoire_creation_date": map[string]interface{}{"lt": "now/y"},
						},
					},
				},
			},
		},
		"aggs": map[string]interface{}{
			"authors": map[string]interface{}{
				"terms": map[string]interface{}{
					"field": "author_uuid",
					"size":  maxAuthorBuckets,
				},
				"aggs": map[string]interface{}{
					"first": map[string]interface{}{
						"top_hits": map[string]interface{}{
							"_source": []string{"author_date", "author_org_name", "author_uuid", "project"},
							"size":    1,
							"sort": []interface{}{
								map[string]interface{}{
									"author_date": map[string]interface{}{"order": "asc"},
								},
							},
						},
					},
					"last_commit": map[string]interface{}{
						"max": map[string]interface{}{"field": "author_date"},
					},
				},
			},
		},
	}
}

type searchResponse struct {
	Aggregations struct {
		Authors struct {
			Buckets []bucketResponse `json:"buckets"`
		} `json:"authors"`
	} `json:"aggregations"`
}

type bucketResponse struct {
	Key   string `json:"key"`
	First struct {
		Hits struct {
			Hits []struct {
				Sort   []float64 `json:"sort"`
				Source hitSource `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	} `json:"first"`
	LastCommit struct {
		Value *float64 `json:"value"`
	} `json:"last_commit"`
}

type hitSource struct {
	AuthorDate    string `json:"author_date"`
	AuthorOrgName string `json:"author_org_name"`
	AuthorUUID    string `json:"author_uuid"`
	Project       string `json:"project"`
}

// AuthorActivity runs the aggregation and returns one record per distinct
// author with their first and last commit dates. Any transport or query
// error is fatal to the run.
func (c *Client) AuthorActivity(ctx context.Context) ([]models.AuthorBucket, error) {
	body, err := json.Marshal(searchBody())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to encode query")
	}

	c.log.WithField("index", Index).Debug("querying author activity")

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(Index),
		c.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "search request failed")
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return nil, errors.New(errors.ErrorTypeQuery, "search returned %s: %s", res.Status(), msg)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to decode search response")
	}

	return decodeBuckets(parsed)
}

// decodeBuckets turns the raw aggregation buckets into AuthorBucket records.
// Timestamps arrive as milliseconds since epoch.
func decodeBuckets(parsed searchResponse) ([]models.AuthorBucket, error) {
	raw := parsed.Aggregations.Authors.Buckets
	buckets := make([]models.AuthorBucket, 0, len(raw))

	for _, b := range raw {
		hits := b.First.Hits.Hits
		if len(hits) == 0 {
			return nil, errors.New(errors.ErrorTypeData, "author %s has no first commit hit", b.Key)
		}
		if len(hits[0].Sort) == 0 {
			return nil, errors.New(errors.ErrorTypeData, "author %s first hit carries no sort value", b.Key)
		}
		if b.LastCommit.Value == nil {
			return nil, errors.New(errors.ErrorTypeData, "author %s has no last commit date", b.Key)
		}

		buckets = append(buckets, models.AuthorBucket{
			AuthorID:    b.Key,
			FirstCommit: msToTime(hits[0].Sort[0]),
			LastCommit:  msToTime(*b.LastCommit.Value),
			Org:         hits[0].Source.AuthorOrgName,
			Project:     hits[0].Source.Project,
		})
	}
	return buckets, nil
}

func msToTime(ms float64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}
