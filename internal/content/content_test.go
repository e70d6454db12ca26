package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/waypoint/internal/config"
	werrors "github.com/vango-dev/waypoint/internal/errors"
)

// storeContract runs the behaviour every Store must share.
func storeContract(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("ListPosts newest first", func(t *testing.T) {
		posts, err := store.ListPosts(ctx)
		require.NoError(t, err)
		require.Len(t, posts, len(SeedPosts()))
		for i := 1; i < len(posts); i++ {
			require.False(t, posts[i].Published.After(posts[i-1].Published))
		}
		require.Equal(t, "wildcards", posts[0].Slug)
	})

	t.Run("GetPost", func(t *testing.T) {
		p, err := store.GetPost(ctx, "nested-layouts")
		require.NoError(t, err)
		require.Equal(t, "Nested layouts", p.Title)
		require.Equal(t, []string{"routing", "layouts"}, p.Tags)
		require.True(t, p.Published.Equal(date("2026-02-03")))
	})

	t.Run("GetPost missing", func(t *testing.T) {
		_, err := store.GetPost(ctx, "nope")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ListLessons in order", func(t *testing.T) {
		lessons, err := store.ListLessons(ctx, TrackAdvanced)
		require.NoError(t, err)
		require.Len(t, lessons, 3)
		require.Equal(t, []int{10, 11, 12}, []int{lessons[0].ID, lessons[1].ID, lessons[2].ID})

		none, err := store.ListLessons(ctx, "missing-track")
		require.NoError(t, err)
		require.Empty(t, none)
	})

	t.Run("GetLesson", func(t *testing.T) {
		l, err := store.GetLesson(ctx, 2)
		require.NoError(t, err)
		require.Equal(t, "Layouts", l.Title)
		require.Equal(t, TrackBasics, l.Track)
		require.Equal(t, 7*time.Minute, l.Duration)

		_, err = store.GetLesson(ctx, 999)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore(0))
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	storeContract(t, store)
}

func TestSQLiteStorePersistsAndSeedsOnce(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "content.db")

	store, err := OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, store.PutPost(ctx, Post{Slug: "extra", Title: "Extra", Published: date("2026-05-01")}))
	require.NoError(t, store.PutLesson(ctx, Lesson{ID: 4, Track: TrackBasics, Title: "Params", Order: 4}))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	defer reopened.Close()

	posts, err := reopened.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, len(SeedPosts())+1)
	require.Equal(t, "extra", posts[0].Slug)
	require.Empty(t, posts[0].Tags)

	lessons, err := reopened.ListLessons(ctx, TrackBasics)
	require.NoError(t, err)
	require.Len(t, lessons, 4)
}

func TestOpenSQLiteRequiresDSN(t *testing.T) {
	_, err := OpenSQLite(context.Background(), " ")
	require.Error(t, err)
}

func TestMemoryStoreDelayHonoursContext(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := store.GetPost(ctx, "hello-world")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), time.Second)
}

func TestMemoryStorePut(t *testing.T) {
	store := NewMemoryStore(0)
	store.PutPost(Post{Slug: "new", Title: "New", Published: time.Now()})

	p, err := store.GetPost(context.Background(), "new")
	require.NoError(t, err)
	require.Equal(t, "New", p.Title)
}

type fakeS3 struct {
	objects map[string]string
	err     error
	keys    []string
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.keys = append(f.keys, *in.Bucket+"/"+*in.Key)
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte(body)))}, nil
}

func TestWithS3Bodies(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string]string{"lessons/10.html": "<p>From the bucket</p>"}}
	store := WithS3Bodies(NewMemoryStore(0), fake, "site", "lessons")

	l, err := store.GetLesson(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, "<p>From the bucket</p>", l.Body)
	require.Equal(t, []string{"site/lessons/10.html"}, fake.keys)

	// No object: the stored body is kept.
	l, err = store.GetLesson(ctx, 11)
	require.NoError(t, err)
	require.Equal(t, "The query cache collapses concurrent fetches and serves fresh entries.", l.Body)

	// Missing lessons never reach the bucket.
	_, err = store.GetLesson(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
	require.Len(t, fake.keys, 2)

	// Listings pass through.
	lessons, err := store.ListLessons(ctx, TrackAdvanced)
	require.NoError(t, err)
	require.Len(t, lessons, 3)
}

func TestWithS3BodiesError(t *testing.T) {
	boom := errors.New("connection refused")
	store := WithS3Bodies(NewMemoryStore(0), &fakeS3{err: boom}, "site", "")

	_, err := store.GetLesson(context.Background(), 1)
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "site/1.html")
}

func TestBodyKey(t *testing.T) {
	require.Equal(t, "lessons/3.html", BodyKey("lessons", 3))
	require.Equal(t, "lessons/3.html", BodyKey("lessons/", 3))
	require.Equal(t, "3.html", BodyKey("", 3))
}

// isolateAWS points the AWS config chain at files under a temp dir so the
// host's profiles and instance metadata never leak into a test.
func isolateAWS(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	for _, k := range []string{"AWS_PROFILE", "AWS_REGION", "AWS_DEFAULT_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_SESSION_TOKEN"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestNewS3Client(t *testing.T) {
	dir := isolateAWS(t)
	creds := "[default]\naws_access_key_id = AKIDFILE\naws_secret_access_key = secret\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials"), []byte(creds), 0o600))
	t.Setenv("AWS_REGION", "eu-west-1")
	ctx := context.Background()

	client, err := NewS3Client(ctx, S3ClientOptions{})
	require.NoError(t, err)
	o := client.Options()
	require.Equal(t, "eu-west-1", o.Region)
	require.Nil(t, o.BaseEndpoint)
	require.False(t, o.UsePathStyle)

	got, err := o.Credentials.Retrieve(ctx)
	require.NoError(t, err)
	require.Equal(t, "AKIDFILE", got.AccessKeyID)

	client, err = NewS3Client(ctx, S3ClientOptions{Region: "us-east-2", Endpoint: "http://localhost:9000"})
	require.NoError(t, err)
	o = client.Options()
	require.Equal(t, "us-east-2", o.Region)
	require.Equal(t, "http://localhost:9000", *o.BaseEndpoint)
	require.True(t, o.UsePathStyle)
}

func TestOpen(t *testing.T) {
	isolateAWS(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	cfg := config.New()
	store, closer, err := Open(ctx, cfg, logger)
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, store)
	require.NoError(t, closer.Close())

	cfg.Content.Driver = "sqlite"
	cfg.Content.SQLiteDSN = ":memory:"
	cfg.S3.Bucket = "site"
	cfg.S3.Region = "us-east-1"
	store, closer, err = Open(ctx, cfg, logger)
	require.NoError(t, err)
	defer closer.Close()
	require.IsType(t, &s3Bodies{}, store)
	require.IsType(t, &SQLiteStore{}, store.(*s3Bodies).Store)

	cfg.Content.Driver = "redis"
	_, _, err = Open(ctx, cfg, logger)
	require.True(t, werrors.HasCode(err, "E401"), fmt.Sprint(err))
}
