package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/taskflow/taskflow-api/internal/authz"
	"github.com/taskflow/taskflow-api/internal/constants"
	"github.com/taskflow/taskflow-api/internal/database"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"github.com/taskflow/taskflow-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Task{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	taskRepo := repository.NewTaskRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	taskService := services.NewTaskService(taskRepo, userRepo)

	// No AI service in tests
	suite.handler = NewTaskHandler(taskService, nil)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *TaskHandlerTestSuite) createTestUser(email string, role models.Role) *models.User {
	user := &models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         role,
	}
	suite.db.Create(user)
	return user
}

func (suite *TaskHandlerTestSuite) createTestTask(title string, creatorID, assigneeID uint64) *models.Task {
	task := &models.Task{
		Title:        title,
		Description:  "Test Description",
		Priority:     models.PriorityLow,
		CreatedByID:  creatorID,
		AssignedToID: assigneeID,
	}
	suite.db.Create(task)
	return task
}

// Helper function to create authenticated context (simulates LoadCaller middleware)
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyCaller, authz.CallerFrom(user))

	return c, w
}

func (suite *TaskHandlerTestSuite) setIDParam(c *gin.Context, id uint64) {
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(id, 10)}}
}

// TestListTasks_Success tests successful task listing
func (suite *TaskHandlerTestSuite) TestListTasks_Success() {
	user := suite.createTestUser("test@example.com", models.RoleUser)
	task := suite.createTestTask("Test Task", user.ID, user.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, user)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Contains(suite.T(), response, "tasks")
	assert.Contains(suite.T(), response, "pagination")

	tasks := response["tasks"].([]interface{})
	assert.Len(suite.T(), tasks, 1)

	firstTask := tasks[0].(map[string]interface{})
	assert.Equal(suite.T(), task.Title, firstTask["title"])
}

// TestListTasks_Unauthorized tests listing without authentication
func (suite *TaskHandlerTestSuite) TestListTasks_Unauthorized() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/tasks", nil)
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestListTasks_ScopedToAssignee tests that regular users only see their tasks
func (suite *TaskHandlerTestSuite) TestListTasks_ScopedToAssignee() {
	user1 := suite.createTestUser("user1@example.com", models.RoleUser)
	user2 := suite.createTestUser("user2@example.com", models.RoleUser)
	suite.createTestTask("Mine", user1.ID, user1.ID)
	suite.createTestTask("Not Mine", user2.ID, user2.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, user1)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	tasks := response["tasks"].([]interface{})
	assert.Len(suite.T(), tasks, 1)
	assert.Equal(suite.T(), "Mine", tasks[0].(map[string]interface{})["title"])
}

// TestListTasks_CompletedFilter tests the completed query filter
func (suite *TaskHandlerTestSuite) TestListTasks_CompletedFilter() {
	user := suite.createTestUser("test@example.com", models.RoleUser)
	suite.createTestTask("Open", user.ID, user.ID)
	done := suite.createTestTask("Done", user.ID, user.ID)
	now := time.Now()
	done.Completed = true
	done.CompletedAt = &now
	suite.db.Save(done)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, user)
	c.Request.URL.RawQuery = "completed=true"

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	tasks := response["tasks"].([]interface{})
	assert.Len(suite.T(), tasks, 1)
	assert.Equal(suite.T(), "Done", tasks[0].(map[string]interface{})["title"])
}

// TestGetTask_Success tests successful task retrieval
func (suite *TaskHandlerTestSuite) TestGetTask_Success() {
	user := suite.createTestUser("test@example.com", models.RoleUser)
	task := suite.createTestTask("Test Task", user.ID, user.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks/1", nil, user)
	suite.setIDParam(c, task.ID)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), task.Title, response["title"])
}

// TestGetTask_OutOfScope tests that a foreign task reads as not found
func (suite *TaskHandlerTestSuite) TestGetTask_OutOfScope() {
	user1 := suite.createTestUser("user1@example.com", models.RoleUser)
	user2 := suite.createTestUser("user2@example.com", models.RoleUser)
	task := suite.createTestTask("Foreign Task", user2.ID, user2.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks/1", nil, user1)
	suite.setIDParam(c, task.ID)

	suite.handler.GetTask(c)

	// Not 403: out-of-scope tasks must not leak their existence
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestCreateTask_Success tests successful task creation
func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	user := suite.createTestUser("test@example.com", models.RoleUser)

	requestBody := map[string]interface{}{
		"title":       "New Task",
		"description": "Task Description",
		"priority":    "High",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "New Task", response["title"])
	assert.Equal(suite.T(), "High", response["priority"])
	assert.EqualValues(suite.T(), user.ID, response["created_by_id"])
	assert.EqualValues(suite.T(), user.ID, response["assigned_to_id"])
}

// TestCreateTask_InvalidRequest tests task creation with invalid request
func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidRequest() {
	user := suite.createTestUser("test@example.com", models.RoleUser)

	// Missing required field: title
	requestBody := map[string]interface{}{
		"description": "No title",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestCreateTask_InvalidPriority tests task creation with an unknown priority
func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidPriority() {
	user := suite.createTestUser("test@example.com", models.RoleUser)

	requestBody := map[string]interface{}{
		"title":    "New Task",
		"priority": "urgent",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestUpdateTask_Success tests successful task update
func (suite *TaskHandlerTestSuite) TestUpdateTask_Success() {
	user := suite.createTestUser("test@example.com", models.RoleUser)
	task := suite.createTestTask("Old Title", user.ID, user.ID)

	requestBody := map[string]interface{}{
		"title":       "Updated Title",
		"description": "Updated Description",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, user)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Updated Title", response["title"])
	assert.Equal(suite.T(), "Updated Description", response["description"])
}

// TestUpdateTask_EmptyTitleKeepsExisting tests that an empty title is a no-op
func (suite *TaskHandlerTestSuite) TestUpdateTask_EmptyTitleKeepsExisting() {
	user := suite.createTestUser("test@example.com", models.RoleUser)
	task := suite.createTestTask("Keep Me", user.ID, user.ID)

	requestBody := map[string]interface{}{
		"title":       "",
		"description": "New Description",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, user)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Keep Me", response["title"])
	assert.Equal(suite.T(), "New Description", response["description"])
}

// TestUpdateTask_NullDueDate tests updating due_date to null
func (suite *TaskHandlerTestSuite) TestUpdateTask_NullDueDate() {
	user := suite.createTestUser("test@example.com", models.RoleUser)
	dueDate := time.Now().Add(24 * time.Hour)
	task := suite.createTestTask("Task with Due Date", user.ID, user.ID)
	task.DueDate = &dueDate
	suite.db.Save(task)

	requestBody := map[string]interface{}{
		"due_date": nil,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, user)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), response["due_date"])
}

// TestUpdateTask_CompletedSetsTimestamp tests completing a task over HTTP
func (suite *TaskHandlerTestSuite) TestUpdateTask_CompletedSetsTimestamp() {
	user := suite.createTestUser("test@example.com", models.RoleUser)
	task := suite.createTestTask("To Complete", user.ID, user.ID)

	requestBody := map[string]interface{}{
		"completed": true,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, user)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), true, response["completed"])
	assert.NotNil(suite.T(), response["completed_at"])
}

// TestUpdateTask_InvalidRequest tests task update with invalid request
func (suite *TaskHandlerTestSuite) TestUpdateTask_InvalidRequest() {
	user := suite.createTestUser("test@example.com", models.RoleUser)
	task := suite.createTestTask("Test Task", user.ID, user.ID)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", []byte("invalid json"), user)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestDeleteTask_Success tests successful task deletion
func (suite *TaskHandlerTestSuite) TestDeleteTask_Success() {
	user := suite.createTestUser("test@example.com", models.RoleUser)
	task := suite.createTestTask("Task to Delete", user.ID, user.ID)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, user)
	suite.setIDParam(c, task.ID)

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Task deleted successfully", response["message"])

	var count int64
	suite.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count)
	assert.EqualValues(suite.T(), 0, count)
}

// TestDeleteTask_NotCreator tests task deletion by an unrelated user
func (suite *TaskHandlerTestSuite) TestDeleteTask_NotCreator() {
	user1 := suite.createTestUser("user1@example.com", models.RoleUser)
	user2 := suite.createTestUser("user2@example.com", models.RoleUser)
	task := suite.createTestTask("Task to Delete", user1.ID, user1.ID)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, user2)
	suite.setIDParam(c, task.ID)

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestSuggestTasks_NotConfigured tests the AI endpoint without an API key
func (suite *TaskHandlerTestSuite) TestSuggestTasks_NotConfigured() {
	user := suite.createTestUser("test@example.com", models.RoleUser)

	requestBody := map[string]interface{}{
		"text": "Prepare the quarterly report by Friday",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks/suggest", body, user)

	suite.handler.SuggestTasks(c)

	assert.Equal(suite.T(), http.StatusServiceUnavailable, w.Code)
}

// TestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
