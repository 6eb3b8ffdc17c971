package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"brightpath_go/database"
	"brightpath_go/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points database.DB at a fresh in-memory sqlite database for one
// test. Each test gets its own named shared-cache database so parallel
// connections inside a transaction see the same data.
func setupTestDB(t *testing.T) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Branch{},
		&models.User{},
		&models.Student{},
		&models.Course{},
		&models.CourseRegistration{},
		&models.CafeteriaItem{},
		&models.CafeteriaOrder{},
		&models.CafeteriaOrderItem{},
		&models.Room{},
		&models.WorkspaceBooking{},
		&models.BookingCharge{},
		&models.SharedWorkspace{},
		&models.SharedWorkspaceBooking{},
		&models.Payment{},
		&models.Certificate{},
		&models.ActivityLog{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	database.DB = db
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
		database.DB = nil
	})
}

func amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", s, err)
	}
	return v
}

func seedBranch(t *testing.T) models.Branch {
	t.Helper()
	branch := models.Branch{Name: "Test Branch", Code: fmt.Sprintf("T-%s", t.Name()), Active: true}
	if err := database.DB.Create(&branch).Error; err != nil {
		t.Fatalf("failed to seed branch: %v", err)
	}
	return branch
}

func seedStudent(t *testing.T, branchID uint) models.Student {
	t.Helper()
	student := models.Student{
		BranchID:  branchID,
		FirstName: "Nok",
		LastName:  "T",
		IsActive:  true,
	}
	if err := database.DB.Create(&student).Error; err != nil {
		t.Fatalf("failed to seed student: %v", err)
	}
	return student
}

func seedCourse(t *testing.T, branchID uint, price string, maxStudents int) models.Course {
	t.Helper()
	course := models.Course{
		BranchID:    branchID,
		Name:        "Test Course",
		Price:       amount(t, price),
		MaxStudents: maxStudents,
		Status:      models.CourseStatusActive,
	}
	if err := database.DB.Create(&course).Error; err != nil {
		t.Fatalf("failed to seed course: %v", err)
	}
	return course
}

func seedItem(t *testing.T, branchID uint, name, price string, stock int) models.CafeteriaItem {
	t.Helper()
	item := models.CafeteriaItem{
		BranchID:      branchID,
		Name:          name,
		Price:         amount(t, price),
		StockQuantity: stock,
		Active:        true,
	}
	if err := database.DB.Create(&item).Error; err != nil {
		t.Fatalf("failed to seed cafeteria item: %v", err)
	}
	return item
}

func seedRoom(t *testing.T, branchID uint, rate string) models.Room {
	t.Helper()
	room := models.Room{
		BranchID:   branchID,
		RoomName:   "Focus Room",
		Capacity:   4,
		HourlyRate: amount(t, rate),
		Status:     "available",
	}
	if err := database.DB.Create(&room).Error; err != nil {
		t.Fatalf("failed to seed room: %v", err)
	}
	return room
}

func seedWorkspace(t *testing.T, branchID uint, rate string, capacity int) models.SharedWorkspace {
	t.Helper()
	workspace := models.SharedWorkspace{
		BranchID:    branchID,
		Name:        "Open Space",
		HourlyRate:  amount(t, rate),
		MaxCapacity: capacity,
		Status:      "available",
	}
	if err := database.DB.Create(&workspace).Error; err != nil {
		t.Fatalf("failed to seed shared workspace: %v", err)
	}
	return workspace
}

func window(t *testing.T, hours int) (time.Time, time.Time) {
	t.Helper()
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	return start, start.Add(time.Duration(hours) * time.Hour)
}
