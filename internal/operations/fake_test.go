package operations

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeRDS struct {
	snapshots   []rdstypes.DBSnapshot
	createErr   error
	describeErr error
	restoreErr  error

	created   []string
	described int
	deleted   []string
	restored  []string
}

func (f *fakeRDS) CreateDBSnapshot(_ context.Context, in *rds.CreateDBSnapshotInput, _ ...func(*rds.Options)) (*rds.CreateDBSnapshotOutput, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, aws.ToString(in.DBSnapshotIdentifier))
	return &rds.CreateDBSnapshotOutput{DBSnapshot: &rdstypes.DBSnapshot{
		DBSnapshotIdentifier: in.DBSnapshotIdentifier,
		Status:               aws.String("creating"),
	}}, nil
}

func (f *fakeRDS) DescribeDBSnapshots(_ context.Context, _ *rds.DescribeDBSnapshotsInput, _ ...func(*rds.Options)) (*rds.DescribeDBSnapshotsOutput, error) {
	f.described++
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	return &rds.DescribeDBSnapshotsOutput{DBSnapshots: f.snapshots}, nil
}

func (f *fakeRDS) DeleteDBSnapshot(_ context.Context, in *rds.DeleteDBSnapshotInput, _ ...func(*rds.Options)) (*rds.DeleteDBSnapshotOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.DBSnapshotIdentifier))
	return &rds.DeleteDBSnapshotOutput{}, nil
}

func (f *fakeRDS) RestoreDBInstanceFromDBSnapshot(_ context.Context, in *rds.RestoreDBInstanceFromDBSnapshotInput, _ ...func(*rds.Options)) (*rds.RestoreDBInstanceFromDBSnapshotOutput, error) {
	if f.restoreErr != nil {
		return nil, f.restoreErr
	}
	f.restored = append(f.restored, aws.ToString(in.DBInstanceIdentifier))
	return &rds.RestoreDBInstanceFromDBSnapshotOutput{DBInstance: &rdstypes.DBInstance{
		DBInstanceIdentifier: in.DBInstanceIdentifier,
	}}, nil
}

type fakeS3 struct {
	err  error
	keys []string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.keys = append(f.keys, aws.ToString(in.Key))
	return &s3.PutObjectOutput{}, nil
}
