package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/Jhorne678-blue/BJJ-PRO-GYM/apps/api/echo"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/analytics"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/attendance"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/backup"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/class"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/gym"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/membership"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/notification"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/risk"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/student"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
	blobsvc "github.com/Jhorne678-blue/BJJ-PRO-GYM/services/blob"
	emailsvc "github.com/Jhorne678-blue/BJJ-PRO-GYM/services/email"
	lockoutsvc "github.com/Jhorne678-blue/BJJ-PRO-GYM/services/lockout"
	inmemdb "github.com/Jhorne678-blue/BJJ-PRO-GYM/storage/database/inmem"
	testutil "github.com/Jhorne678-blue/BJJ-PRO-GYM/tests"
)

const ownerPwd = "Xq9!mZ-27pLw"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type fixture struct {
	app     Server
	conf    *core.Config
	mailSvc *emailsvc.ConsoleService

	gymRepo     gym.Repository
	usrRepo     user.Repository
	studentRepo student.Repository
	classRepo   class.Repository
	attRepo     attendance.Repository

	gym        gym.Gym
	owner      user.User
	ownerToken string
}

// setup wires a server on a fresh in-memory database holding one gym and its owner.
func setup(t *testing.T) fixture {
	t.Helper()

	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)

	validate, translator := core.NewValidator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	class.InitValidators(validate, translator)

	// set up DB & repos
	db := inmemdb.Open()
	f := fixture{
		conf:        conf,
		mailSvc:     emailsvc.NewConsoleServiceMock(conf, logger),
		gymRepo:     inmemdb.NewGymRepository(db),
		usrRepo:     inmemdb.NewUserRepository(db),
		studentRepo: inmemdb.NewStudentRepository(db),
		classRepo:   inmemdb.NewClassRepository(db),
		attRepo:     inmemdb.NewAttendanceRepository(db),
	}

	// set up services
	codes, err := gym.NewCodeTable(conf.Membership)
	require.NoError(t, err)
	prices, err := membership.ParsePriceList(nil)
	require.NoError(t, err)
	store, err := blobsvc.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	thresholds := risk.Thresholds{Low: conf.Risk.LowThreshold, High: conf.Risk.HighThreshold}
	studentSvc := student.NewService(f.studentRepo)
	classSvc := class.NewService(f.classRepo)
	attSvc := attendance.NewService(f.attRepo, studentSvc, classSvc, thresholds, time.UTC)

	// set up server
	f.app = NewServer(ServerDeps{
		Conf:            conf,
		Logger:          logger,
		Validate:        validate,
		Translator:      translator,
		DisableReqLogs:  true,
		Location:        time.UTC,
		UserSvc:         user.NewServiceMock(f.usrRepo, lockoutsvc.NewMemoryStore(conf.Lockout), f.mailSvc, logger, conf),
		GymSvc:          gym.NewService(f.gymRepo, codes, prices, f.mailSvc, logger, conf.DashboardDomain),
		StudentSvc:      studentSvc,
		ClassSvc:        classSvc,
		AttendanceSvc:   attSvc,
		AnalyticsSvc:    analytics.NewService(studentSvc, classSvc, attSvc, time.UTC),
		NotificationSvc: notification.NewService(inmemdb.NewNotificationRepository(db), studentSvc, attSvc, f.mailSvc),
		BackupSvc:       backup.NewService(inmemdb.NewBackupRepository(db), store, logger),
	})

	f.gym, f.owner = testutil.CreateGym(t, f.gymRepo, "Gracie Barra", "owner@gb.test", ownerPwd)
	f.ownerToken = f.token(t, f.owner)
	return f
}

func (f fixture) token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(f.conf, GetUserClaims(f.conf, usr))
	if err != nil {
		t.Fatalf("token() failed: %v", err)
	}
	return token
}

// serve runs `tt` against the app and checks its status code, and its body when wantData is set.
func (f fixture) serve(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	t.Helper()
	req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
	for k, v := range tt.header {
		req.Header.Set(k, v)
	}
	f.app.ServeHTTP(rec, req)
	if tt.wantData != nil {
		checkCodeAndData(t, tt, rec)
	} else if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	header   map[string]string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
