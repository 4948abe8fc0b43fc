package snapshot

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
)

// fakeRDS records calls and serves DescribeDBSnapshots in pages of pageSize.
type fakeRDS struct {
	snapshots []rdstypes.DBSnapshot
	pageSize  int

	createErr   error
	describeErr error
	deleteErr   map[string]error
	restoreErr  error

	created      []*rds.CreateDBSnapshotInput
	described    []*rds.DescribeDBSnapshotsInput
	deleted      []string
	restoreCalls []*rds.RestoreDBInstanceFromDBSnapshotInput
}

func (f *fakeRDS) CreateDBSnapshot(_ context.Context, in *rds.CreateDBSnapshotInput, _ ...func(*rds.Options)) (*rds.CreateDBSnapshotOutput, error) {
	f.created = append(f.created, in)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &rds.CreateDBSnapshotOutput{DBSnapshot: &rdstypes.DBSnapshot{
		DBSnapshotIdentifier: in.DBSnapshotIdentifier,
		DBInstanceIdentifier: in.DBInstanceIdentifier,
		SnapshotType:         aws.String("manual"),
		Status:               aws.String("creating"),
	}}, nil
}

func (f *fakeRDS) DescribeDBSnapshots(_ context.Context, in *rds.DescribeDBSnapshotsInput, _ ...func(*rds.Options)) (*rds.DescribeDBSnapshotsOutput, error) {
	f.described = append(f.described, in)
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	size := f.pageSize
	if size <= 0 {
		size = len(f.snapshots)
	}
	start := 0
	if in.Marker != nil {
		start, _ = strconv.Atoi(*in.Marker)
	}
	end := min(start+size, len(f.snapshots))
	out := &rds.DescribeDBSnapshotsOutput{DBSnapshots: f.snapshots[start:end]}
	if end < len(f.snapshots) {
		out.Marker = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func (f *fakeRDS) DeleteDBSnapshot(_ context.Context, in *rds.DeleteDBSnapshotInput, _ ...func(*rds.Options)) (*rds.DeleteDBSnapshotOutput, error) {
	id := aws.ToString(in.DBSnapshotIdentifier)
	if err := f.deleteErr[id]; err != nil {
		return nil, err
	}
	f.deleted = append(f.deleted, id)
	return &rds.DeleteDBSnapshotOutput{}, nil
}

func (f *fakeRDS) RestoreDBInstanceFromDBSnapshot(_ context.Context, in *rds.RestoreDBInstanceFromDBSnapshotInput, _ ...func(*rds.Options)) (*rds.RestoreDBInstanceFromDBSnapshotOutput, error) {
	f.restoreCalls = append(f.restoreCalls, in)
	if f.restoreErr != nil {
		return nil, f.restoreErr
	}
	return &rds.RestoreDBInstanceFromDBSnapshotOutput{DBInstance: &rdstypes.DBInstance{
		DBInstanceIdentifier: in.DBInstanceIdentifier,
		DBInstanceStatus:     aws.String("creating"),
	}}, nil
}

func rdsSnapshot(id string, created time.Time) rdstypes.DBSnapshot {
	return rdstypes.DBSnapshot{
		DBSnapshotIdentifier: aws.String(id),
		DBInstanceIdentifier: aws.String("prod-db-1"),
		SnapshotType:         aws.String("manual"),
		Status:               aws.String("available"),
		SnapshotCreateTime:   aws.Time(created),
	}
}

func tagMap(tags []rdstypes.Tag) map[string]string {
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		m[aws.ToString(t.Key)] = aws.ToString(t.Value)
	}
	return m
}
