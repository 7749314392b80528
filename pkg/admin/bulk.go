package admin

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BulkEntry is one instance's outcome within a BulkResult.
type BulkEntry struct {
	Instance string
	Result   Result
}

// BulkResult collects per-instance outcomes of a bulk operation in the
// order the instances were supplied. Instances are not deduplicated: a
// repeated instance is called once per occurrence and contributes one entry
// per call.
type BulkResult struct {
	entries []BulkEntry
}

func (b *BulkResult) add(instance string, r Result) {
	b.entries = append(b.entries, BulkEntry{Instance: instance, Result: r})
}

// Entries returns the per-call outcomes in invocation order.
func (b *BulkResult) Entries() []BulkEntry {
	return b.entries
}

// Len returns the number of calls made.
func (b *BulkResult) Len() int {
	return len(b.entries)
}

// Get returns the result recorded for an instance. For a repeated instance
// the last call wins. The second return value is false when the instance
// was not part of the bulk run.
func (b *BulkResult) Get(instance string) (Result, bool) {
	for i := len(b.entries) - 1; i >= 0; i-- {
		if b.entries[i].Instance == instance {
			return b.entries[i].Result, true
		}
	}
	return Result{}, false
}

// MarshalJSON renders the bulk outcome as a JSON object keyed by instance
// URL. Keys appear in first-supplied order and a repeated instance keeps
// its last result, matching map-assignment semantics.
func (b *BulkResult) MarshalJSON() ([]byte, error) {
	var order []string
	final := make(map[string]Result, len(b.entries))
	for _, e := range b.entries {
		if _, seen := final[e.Instance]; !seen {
			order = append(order, e.Instance)
		}
		final[e.Instance] = e.Result
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, instance := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(instance)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(final[instance])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// BulkHealthCheck runs health checks across instances strictly in the order
// given, one at a time. Instances are isolated from each other: a failing
// instance never aborts the run or skips the remaining ones.
func (c *Client) BulkHealthCheck(ctx context.Context, instanceURLs []string) *BulkResult {
	return c.bulk(ctx, opHealthCheck, instanceURLs, nil, "checking instance health")
}

// BulkDeployIntegration deploys one integration config, unchanged, to every
// instance in order. Isolation semantics match BulkHealthCheck.
func (c *Client) BulkDeployIntegration(ctx context.Context, instanceURLs []string, config any) *BulkResult {
	return c.bulk(ctx, opDeployIntegration, instanceURLs, config, "deploying integration to instance")
}

func (c *Client) bulk(ctx context.Context, op operation, instanceURLs []string, body any, progressMsg string) *BulkResult {
	runID := uuid.New().String()[:8]
	res := &BulkResult{}
	for i, instanceURL := range instanceURLs {
		c.log.Info(progressMsg,
			zap.String("run", runID),
			zap.String("instance", instanceURL),
			zap.Int("index", i+1),
			zap.Int("total", len(instanceURLs)))
		res.add(instanceURL, c.do(ctx, op, instanceURL, body))
	}
	return res
}
