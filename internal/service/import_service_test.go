package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/training-import/internal/models"
	"github.com/noah-isme/training-import/internal/source"
	appErrors "github.com/noah-isme/training-import/pkg/errors"
	"github.com/noah-isme/training-import/pkg/phone"
)

func newImportServiceForTest(store *memStore, reader sheetReader, cache *CacheService) *ImportService {
	resolver := NewIdentityResolver(memPersons{store}, zap.NewNop())
	svc := NewImportService(store, store, reader, resolver, memEnrollments{store}, memBatches{store}, cache, NewMetricsService(), nil, zap.NewNop(), ImportConfig{})
	svc.fingerprint = func(path string) (string, error) { return "fp-" + path, nil }
	return svc
}

func twoSheetRoster() []source.Sheet {
	return []source.Sheet{
		sheet("一班", []string{"姓名", "手机号", "单位", "地区"},
			[]string{"张三", "138 0000 0001", "一中", "北京"},
			[]string{"李四", "12345", "二中", ""},
			[]string{"", "", "", ""},
			[]string{"王五", "+86 139-0000-0002", "", ""},
			[]string{"", "13700000003", "三中", ""},
		),
		sheet("二班", []string{"姓名", "单位"},
			[]string{"赵六", "四中"},
		),
	}
}

func TestImportServiceTwoSheetRoster(t *testing.T) {
	store := newMemStore()
	svc := newImportServiceForTest(store, sheetsStub{sheets: twoSheetRoster()}, nil)

	receipt, err := svc.Import(context.Background(), ImportRequest{Path: "roster.xlsx", SessionID: "s-1"})
	require.NoError(t, err)

	assert.Equal(t, 4, receipt.RowsSeen)
	assert.Equal(t, 3, receipt.RowsImported)
	assert.Equal(t, 3, receipt.NewPersonCount)
	assert.Equal(t, 3, receipt.NewEnrollmentCount)
	assert.Equal(t, "roster.xlsx", receipt.SourceFile)
	assert.False(t, receipt.PreviouslyImported)

	require.Len(t, receipt.Exceptions, 2)
	rowExc := receipt.Exceptions[0]
	assert.Equal(t, models.ReasonInvalidPhone, rowExc.Reason)
	assert.Equal(t, "一班", rowExc.Sheet)
	require.NotNil(t, rowExc.RowIndex)
	assert.Equal(t, 3, *rowExc.RowIndex)
	assert.Equal(t, "12345", rowExc.Detail)

	tableExc := receipt.Exceptions[1]
	assert.Equal(t, models.ReasonNoPhoneColumn, tableExc.Reason)
	assert.Equal(t, "二班", tableExc.Sheet)
	assert.Nil(t, tableExc.RowIndex)

	require.Len(t, store.enrollments, 3)
	first := store.enrollments[0]
	assert.Equal(t, "s-1", first.SessionID)
	assert.Equal(t, "一班", first.SourceSheet)
	require.NotNil(t, first.RegionText)
	assert.Equal(t, "北京", *first.RegionText)
	assert.Nil(t, first.RoleTitle)
	assert.Nil(t, store.enrollments[1].OrgText)
	assert.Nil(t, store.enrollments[2].NameSnapshot)

	require.Len(t, store.batches, 1)
	assert.Equal(t, 2, store.batches[0].ExceptionCount)
	assert.Equal(t, 1, store.commits)
}

func TestImportServiceReimportDeduplicatesPersonsOnly(t *testing.T) {
	store := newMemStore()
	svc := newImportServiceForTest(store, sheetsStub{sheets: twoSheetRoster()}, nil)
	req := ImportRequest{Path: "roster.xlsx", SessionID: "s-1"}

	first, err := svc.Import(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Import(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 3, first.NewPersonCount)
	assert.Equal(t, 0, second.NewPersonCount)
	assert.Equal(t, first.NewEnrollmentCount, second.NewEnrollmentCount)
	assert.True(t, second.PreviouslyImported)
	assert.Len(t, store.persons, 3)
	assert.Len(t, store.enrollments, 6)
}

func TestImportServiceNameFilledByLaterRow(t *testing.T) {
	store := newMemStore()
	roster := []source.Sheet{sheet("一班", []string{"手机", "姓名"},
		[]string{"13800000001", ""},
		[]string{"13800000001", "张三"},
		[]string{"13800000001", ""},
	)}
	svc := newImportServiceForTest(store, sheetsStub{sheets: roster}, nil)

	receipt, err := svc.Import(context.Background(), ImportRequest{Path: "roster.csv", SessionID: "s-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, receipt.NewPersonCount)
	assert.Equal(t, 3, receipt.NewEnrollmentCount)

	require.Len(t, store.persons, 1)
	for _, p := range store.persons {
		require.NotNil(t, p.LatestName)
		assert.Equal(t, "张三", *p.LatestName)
	}
}

func TestImportServiceRollsBackOnStoreFailure(t *testing.T) {
	store := newMemStore()
	store.failEnrollAt = 3
	svc := newImportServiceForTest(store, sheetsStub{sheets: twoSheetRoster()}, nil)

	receipt, err := svc.Import(context.Background(), ImportRequest{Path: "roster.xlsx", SessionID: "s-1"})
	require.Error(t, err)
	assert.Nil(t, receipt)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
	assert.Empty(t, store.persons)
	assert.Empty(t, store.enrollments)
	assert.Empty(t, store.batches)
	assert.Equal(t, 1, store.rollbacks)
}

func TestImportServiceCancelledContextRollsBack(t *testing.T) {
	store := newMemStore()
	svc := newImportServiceForTest(store, sheetsStub{sheets: twoSheetRoster()}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Import(ctx, ImportRequest{Path: "roster.xlsx", SessionID: "s-1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, store.enrollments)
}

func TestImportServiceRequiresSession(t *testing.T) {
	store := newMemStore()
	svc := newImportServiceForTest(store, sheetsStub{sheets: twoSheetRoster()}, nil)

	_, err := svc.Import(context.Background(), ImportRequest{Path: "roster.xlsx"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Import(context.Background(), ImportRequest{Path: "roster.xlsx", SessionID: "missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Zero(t, store.commits)
}

func TestImportServiceSourceErrors(t *testing.T) {
	store := newMemStore()

	svc := newImportServiceForTest(store, sheetsStub{err: fmt.Errorf("%w: docx", source.ErrUnsupported)}, nil)
	_, err := svc.Import(context.Background(), ImportRequest{Path: "plan.docx", SessionID: "s-1"})
	assert.Equal(t, appErrors.ErrUnsupportedSource.Code, appErrors.FromError(err).Code)

	svc = newImportServiceForTest(store, sheetsStub{err: errors.New("zip: not a valid zip file")}, nil)
	_, err = svc.Import(context.Background(), ImportRequest{Path: "broken.xlsx", SessionID: "s-1"})
	assert.Equal(t, appErrors.ErrUnreadableSource.Code, appErrors.FromError(err).Code)
	assert.Zero(t, store.commits)
}

func TestImportServicePhoneModeOverride(t *testing.T) {
	store := newMemStore()
	roster := []source.Sheet{sheet("一班", []string{"电话"}, []string{"010-6275 1234"})}
	svc := newImportServiceForTest(store, sheetsStub{sheets: roster}, nil)

	strict, err := svc.Import(context.Background(), ImportRequest{Path: "a.csv", SessionID: "s-1"})
	require.NoError(t, err)
	assert.Equal(t, 0, strict.RowsImported)

	lenient, err := svc.Import(context.Background(), ImportRequest{Path: "b.csv", SessionID: "s-1", PhoneMode: string(phone.ModeLenient)})
	require.NoError(t, err)
	assert.Equal(t, 1, lenient.RowsImported)

	_, err = svc.Import(context.Background(), ImportRequest{Path: "c.csv", SessionID: "s-1", PhoneMode: "fuzzy"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestImportServiceInvalidatesStatsCache(t *testing.T) {
	store := newMemStore()
	cacheRepo := newMemCache()
	cacheRepo.items["stats:year:2024:5"] = []byte(`{"year":2024}`)
	cache := NewCacheService(cacheRepo, nil, 0, zap.NewNop(), true)
	svc := newImportServiceForTest(store, sheetsStub{sheets: twoSheetRoster()}, cache)

	_, err := svc.Import(context.Background(), ImportRequest{Path: "roster.xlsx", SessionID: "s-1"})
	require.NoError(t, err)
	assert.Empty(t, cacheRepo.items)
	assert.Contains(t, cacheRepo.deleted, "stats:year:2024:5")
}

func TestImportServiceEmptySheetsAreSkipped(t *testing.T) {
	store := newMemStore()
	svc := newImportServiceForTest(store, sheetsStub{sheets: []source.Sheet{{Name: "空白"}}}, nil)

	receipt, err := svc.Import(context.Background(), ImportRequest{Path: "roster.xlsx", SessionID: "s-1"})
	require.NoError(t, err)
	assert.Zero(t, receipt.RowsSeen)
	assert.Empty(t, receipt.Exceptions)
}
