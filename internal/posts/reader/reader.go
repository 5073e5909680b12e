package reader

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/couchbase/gocb/v2"
	"go.uber.org/zap"

	"linkedin-automator/internal/posts"
)

const (
	cbTimeout = time.Second * 3
)

// Service is responsible for performing read operations on the
// linkedin.posts collection. We use a separate reader service to avoid
// commingling read/writes
type Service struct {
	bucket     string
	cluster    *gocb.Cluster
	collection *gocb.Collection
	logger     *zap.Logger
}

func NewService(logger *zap.Logger, cluster *gocb.Cluster, bucket string) (*Service, error) {
	s := Service{
		bucket:  bucket,
		cluster: cluster,
		logger:  logger,
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	if err := s.setCollection(); err != nil {
		return nil, fmt.Errorf("unable to set collection: %w", err)
	}

	return &s, nil
}

func (s *Service) validate() error {
	var missingDeps []string

	for _, tc := range []struct {
		dep string
		chk func() bool
	}{
		{
			dep: "logger",
			chk: func() bool { return s.logger != nil },
		},
		{
			dep: "cluster",
			chk: func() bool { return s.cluster != nil },
		},
		{
			dep: "bucket",
			chk: func() bool { return s.bucket != "" },
		},
	} {
		if !tc.chk() {
			missingDeps = append(missingDeps, tc.dep)
		}
	}

	if len(missingDeps) > 0 {
		return fmt.Errorf(
			"unable to initialize service due to (%d) missing dependencies: %s",
			len(missingDeps),
			strings.Join(missingDeps, ","),
		)
	}

	return nil
}

// Get returns the publish record with the given post urn.
func (s *Service) Get(id string) (*posts.Record, error) {
	res, err := s.collection.Get(id, &gocb.GetOptions{Timeout: cbTimeout})
	if err != nil {
		if errors.Is(err, gocb.ErrDocumentNotFound) {
			return nil, posts.ErrNotFound
		}
		const msg = "unable to get publish record"
		s.logger.Error(msg, zap.Error(err), zap.String("postId", id))
		return nil, fmt.Errorf(msg+": %w", err)
	}

	var rec posts.Record
	if err := res.Content(&rec); err != nil {
		const msg = "unable to unmarshal publish record"
		s.logger.Error(msg, zap.Error(err), zap.String("postId", id))
		return nil, fmt.Errorf(msg+": %w", err)
	}

	return &rec, nil
}

// List returns up to limit publish records, newest first.
func (s *Service) List(limit int) ([]posts.Record, error) {
	if limit <= 0 {
		limit = 50
	}

	options := gocb.QueryOptions{
		ScanConsistency: gocb.QueryScanConsistencyRequestPlus,
		Timeout:         cbTimeout,
		NamedParameters: map[string]interface{}{"$limit": limit},
	}

	fqn := posts.FullyQualifiedCollectionName(s.bucket)
	stmt := "SELECT " + posts.CouchbaseCollection + ".* FROM " + fqn +
		" ORDER BY `publishedAt` DESC LIMIT $limit"

	res, err := s.cluster.Query(stmt, &options)
	if err != nil {
		const msg = "unable to query collection"
		s.logger.Error(msg, zap.Error(err))
		return nil, fmt.Errorf(msg+": %w", err)
	}

	var records []posts.Record
	for res.Next() {
		var rec posts.Record
		if err := res.Row(&rec); err != nil {
			const msg = "unable to unmarshal record"
			s.logger.Error(msg, zap.Error(err))
			return nil, fmt.Errorf(msg+": %w", err)
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, posts.ErrNotFound
	}

	return records, nil
}

func (s *Service) setCollection() error {
	bucket := s.cluster.Bucket(s.bucket)
	if err := bucket.WaitUntilReady(cbTimeout, nil); err != nil {
		return fmt.Errorf("unable to wait for bucket to be ready: %w", err)
	}

	s.collection = bucket.Scope(posts.CouchbaseScope).Collection(posts.CouchbaseCollection)

	return nil
}
