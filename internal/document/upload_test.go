package document_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
	"github.com/MrJamesThe3rd/dossier/internal/document"
)

func TestService_Upload_Rejected(t *testing.T) {
	const fiveMB = 5 * 1024 * 1024

	type testCase struct {
		name   string
		mutate func(req *document.UploadRequest)
		check  func(t *testing.T, err error)
	}

	validation := func(field string) func(t *testing.T, err error) {
		return func(t *testing.T, err error) {
			var target *document.ValidationError
			require.ErrorAs(t, err, &target)
			assert.Equal(t, field, target.Field)
		}
	}

	tests := []testCase{
		{
			name:   "UnknownType",
			mutate: func(req *document.UploadRequest) { req.DocumentType = "DRIVING_LICENCE" },
			check: func(t *testing.T, err error) {
				var target *document.UnknownUploadTypeError
				assert.ErrorAs(t, err, &target)
			},
		},
		{
			name:   "WrongFormat",
			mutate: func(req *document.UploadRequest) { req.File.OriginalName = "id.docx" },
			check: func(t *testing.T, err error) {
				var target *document.InvalidFileFormatError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, catalog.Format("docx"), target.Format)
			},
		},
		{
			name:   "EmptyFile",
			mutate: func(req *document.UploadRequest) { req.File.Size = 0 },
			check:  validation("file"),
		},
		{
			name:   "TooLarge",
			mutate: func(req *document.UploadRequest) { req.File.Size = fiveMB + 1 },
			check: func(t *testing.T, err error) {
				var target *document.FileTooLargeError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, int64(fiveMB), target.Limit)
			},
		},
		{
			name:   "NotLinked",
			mutate: func(req *document.UploadRequest) { req.LinkedEntityID = "" },
			check:  validation("linkedEntityId"),
		},
		{
			name:   "LinkedToWrongEntity",
			mutate: func(req *document.UploadRequest) { req.LinkedEntityType = document.EntityParcel },
			check:  validation("linkedEntityType"),
		},
		{
			name:   "MissingRequiredMetadata",
			mutate: func(req *document.UploadRequest) { delete(req.Metadata, "idNumber") },
			check:  validation("idNumber"),
		},
		{
			name:   "PatternMismatch",
			mutate: func(req *document.UploadRequest) { req.Metadata["idNumber"] = "ab-12" },
			check: func(t *testing.T, err error) {
				var target *document.ValidationError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "idNumber", target.Field)
				assert.Equal(t, "pattern", target.Rule)
			},
		},
		{
			name:   "AlreadyExpired",
			mutate: func(req *document.UploadRequest) { req.Metadata["expiryDate"] = "2025-12-31" },
			check:  validation("expiryDate"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			req := nationalID("m-1", "ana")
			tt.mutate(&req)

			doc, err := f.svc.Upload(context.Background(), req)
			assert.Nil(t, doc)
			tt.check(t, err)

			_, uploaded := f.store.Len()
			assert.Zero(t, uploaded, "nothing may be stored on a failed upload")
		})
	}
}

func TestService_Upload_NationalID(t *testing.T) {
	f := newFixture(t)

	req := nationalID("m-1", "ana")
	req.Tags = []string{"KYC", "renewal", " "}

	doc, err := f.svc.Upload(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, document.VerificationPending, doc.VerificationStatus)
	assert.Equal(t, catalog.CategoryIdentity, doc.Category)
	assert.Equal(t, document.EntityMember, doc.LinkedEntityType)
	assert.True(t, doc.IsActive)
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, []string{"kyc", "renewal"}, doc.Tags)
	require.NotNil(t, doc.ExpiryDate)
	assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), *doc.ExpiryDate)
}

func TestService_Upload_ExpiresToday(t *testing.T) {
	f := newFixture(t)
	f.clock.advance(14 * time.Hour)

	req := nationalID("m-1", "ana")
	req.Metadata["expiryDate"] = baseTime.Format(time.DateOnly)

	doc, err := f.svc.Upload(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, document.UploadExpired(doc, f.clock.now()))
	assert.Equal(t, document.VerificationPending, document.EffectiveVerification(doc, f.clock.now()))
}

func TestService_Upload_WithoutVerification(t *testing.T) {
	f := newFixture(t)

	doc, err := f.svc.Upload(context.Background(), passportPhoto("m-1", "ana"))
	require.NoError(t, err)
	assert.Equal(t, document.VerificationNotApplicable, doc.VerificationStatus)
}

func TestService_Upload_FractionalLimit(t *testing.T) {
	f := newFixture(t)

	// Passport photos allow 1.5 MB.
	req := passportPhoto("m-1", "ana")
	req.File.Size = 1536 * 1024

	_, err := f.svc.Upload(context.Background(), req)
	require.NoError(t, err)

	req.File.Size++

	_, err = f.svc.Upload(context.Background(), req)

	var target *document.FileTooLargeError
	assert.ErrorAs(t, err, &target)
}

func TestService_Upload_AssociationScope(t *testing.T) {
	f := newFixture(t)

	doc, err := f.svc.Upload(context.Background(), document.UploadRequest{
		DocumentType:   "BYLAWS",
		File:           pdf(4096),
		UploadedBy:     "secretary",
		LinkedEntityID: "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, document.EntityAssociation, doc.LinkedEntityType)
	assert.Empty(t, doc.LinkedEntityID)
}

func TestService_Upload_Replacement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Upload(ctx, nationalID("m-1", "ana"))
	require.NoError(t, err)

	other, err := f.svc.Upload(ctx, nationalID("m-2", "rui"))
	require.NoError(t, err)

	f.clock.advance(time.Minute)

	second, err := f.svc.Upload(ctx, nationalID("m-1", "ana"))
	require.NoError(t, err)
	assert.Equal(t, 2, second.Version)

	active, err := f.svc.ListUploaded(ctx, document.UploadFilter{DocumentType: "NATIONAL_ID", EntityID: "m-1", ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)

	old, err := f.svc.GetUploaded(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, old.IsActive)
	require.NotNil(t, old.ReplacedByID)
	assert.Equal(t, second.ID, *old.ReplacedByID)

	untouched, err := f.svc.GetUploaded(ctx, other.ID)
	require.NoError(t, err)
	assert.True(t, untouched.IsActive)

	history, err := f.svc.UploadHistory(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)
}

func TestService_Upload_StorageError(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *document.MockRepository)
		wantOp    string
	}

	tests := []testCase{
		{
			name: "FindActive",
			setupMock: func(m *document.MockRepository) {
				m.EXPECT().FindActiveUpload(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))
			},
			wantOp: "finding active upload",
		},
		{
			name: "Create",
			setupMock: func(m *document.MockRepository) {
				m.EXPECT().FindActiveUpload(gomock.Any(), gomock.Any()).Return(nil, nil)
				m.EXPECT().CreateUploaded(gomock.Any(), gomock.Any()).Return(errors.New("timeout"))
			},
			wantOp: "creating upload",
		},
		{
			name: "Replace",
			setupMock: func(m *document.MockRepository) {
				m.EXPECT().
					FindActiveUpload(gomock.Any(), document.Slot{DocumentType: "NATIONAL_ID", EntityType: document.EntityMember, EntityID: "m-1"}).
					Return(&document.UploadedDocument{ID: uuid.New(), IsActive: true, Version: 1}, nil)
				m.EXPECT().ReplaceUploaded(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("timeout"))
			},
			wantOp: "replacing upload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := document.NewMockRepository(ctrl)
			tt.setupMock(mockRepo)

			c := &clock{t: baseTime}
			svc := document.NewService(mockRepo, defaultCatalog(t), document.WithClock(c.now))

			_, err := svc.Upload(context.Background(), nationalID("m-1", "ana"))

			var target *document.StorageError
			require.ErrorAs(t, err, &target)
			assert.Equal(t, tt.wantOp, target.Op)
		})
	}
}

func TestService_Verify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.svc.Upload(ctx, nationalID("m-1", "ana"))
	require.NoError(t, err)

	_, err = f.svc.Verify(ctx, id.ID, "officer", document.VerificationExpired, "")

	var validation *document.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "decision", validation.Field)

	_, err = f.svc.Verify(ctx, id.ID, "officer", document.VerificationRejected, "")
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "notes", validation.Field)

	f.clock.advance(time.Hour)

	verified, err := f.svc.Verify(ctx, id.ID, "officer", document.VerificationVerified, "")
	require.NoError(t, err)
	assert.Equal(t, document.VerificationVerified, verified.VerificationStatus)
	assert.Equal(t, "officer", *verified.VerifiedBy)
	assert.Equal(t, baseTime.Add(time.Hour), *verified.VerifiedAt)
	assert.Nil(t, verified.VerificationNotes)

	_, err = f.svc.Verify(ctx, id.ID, "officer", document.VerificationRejected, "blurry")

	var transitionErr *document.InvalidStateTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, "VERIFIED", transitionErr.From)

	photo, err := f.svc.Upload(ctx, passportPhoto("m-1", "ana"))
	require.NoError(t, err)

	_, err = f.svc.Verify(ctx, photo.ID, "officer", document.VerificationVerified, "")
	assert.ErrorAs(t, err, &transitionErr)

	_, err = f.svc.Verify(ctx, uuid.New(), "officer", document.VerificationVerified, "")
	assert.ErrorIs(t, err, document.ErrNotFound)
}

func TestService_Deactivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	proof, err := f.svc.Upload(ctx, document.UploadRequest{
		DocumentType:     "PROOF_OF_ADDRESS",
		File:             pdf(1024),
		UploadedBy:       "ana",
		LinkedEntityType: document.EntityMember,
		LinkedEntityID:   "m-1",
	})
	require.NoError(t, err)

	_, err = f.svc.Deactivate(ctx, proof.ID, document.Viewer{UserID: "rui"})
	assert.ErrorIs(t, err, document.ErrDeleteNotPermitted)

	gone, err := f.svc.Deactivate(ctx, proof.ID, document.Viewer{UserID: "ana"})
	require.NoError(t, err)
	assert.False(t, gone.IsActive)
	assert.Nil(t, gone.ReplacedByID)

	_, err = f.svc.Deactivate(ctx, proof.ID, document.Viewer{UserID: "ana"})
	assert.ErrorIs(t, err, document.ErrDeleteNotPermitted)

	id, err := f.svc.Upload(ctx, nationalID("m-1", "ana"))
	require.NoError(t, err)

	_, err = f.svc.Deactivate(ctx, id.ID, document.Viewer{UserID: "admin", Admin: true})
	assert.ErrorIs(t, err, document.ErrDeleteNotPermitted, "required upload")

	_, err = f.svc.Verify(ctx, id.ID, "officer", document.VerificationRejected, "expired scan")
	require.NoError(t, err)

	_, err = f.svc.Deactivate(ctx, id.ID, document.Viewer{UserID: "ana"})
	assert.NoError(t, err)
}

func TestService_ExpiringUploaded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := nationalID("m-1", "ana")
	req.Metadata["expiryDate"] = "2026-04-01"

	soon, err := f.svc.Upload(ctx, req)
	require.NoError(t, err)

	_, err = f.svc.Upload(ctx, nationalID("m-2", "rui"))
	require.NoError(t, err)

	docs, err := f.svc.ExpiringUploaded(ctx, 30)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, soon.ID, docs[0].ID)
}

func TestFileFormat(t *testing.T) {
	tests := []struct {
		name string
		file document.FileInfo
		want catalog.Format
	}{
		{name: "Extension", file: document.FileInfo{OriginalName: "scan.PDF"}, want: "pdf"},
		{name: "ExtensionWinsOverMIME", file: document.FileInfo{OriginalName: "a.png", MIMEType: "application/pdf"}, want: "png"},
		{name: "MIMEFallback", file: document.FileInfo{OriginalName: "scan", MIMEType: "image/jpeg"}, want: "jpg"},
		{name: "MIMEWithParams", file: document.FileInfo{OriginalName: "notes", MIMEType: "text/plain; charset=utf-8"}, want: "txt"},
		{name: "Unknown", file: document.FileInfo{OriginalName: "blob"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, document.FileFormat(tt.file))
		})
	}
}
