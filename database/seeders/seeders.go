package seeders

import (
	"log"

	"brightpath_go/database"
	"brightpath_go/models"
	"brightpath_go/utils"

	"github.com/shopspring/decimal"
)

// SeedAll runs all seeders
func SeedAll() {
	log.Println("Starting database seeding...")

	SeedBranches()
	SeedUsers()
	SeedCourses()
	SeedCafeteriaItems()
	SeedRooms()
	SeedSharedWorkspaces()

	log.Println("Database seeding completed successfully!")
}

// SeedBranches seeds the branches table
func SeedBranches() {
	var count int64
	database.DB.Model(&models.Branch{}).Count(&count)
	if count > 0 {
		log.Println("Branches already seeded, skipping...")
		return
	}

	branches := []models.Branch{
		{
			Name:    "Downtown Center",
			Code:    "DTC",
			Address: "12 Main Street",
			Phone:   "02-1234567",
			Active:  true,
		},
		{
			Name:    "Riverside Center",
			Code:    "RVS",
			Address: "88 Riverside Road",
			Phone:   "02-1234568",
			Active:  true,
		},
	}

	for _, branch := range branches {
		if err := database.DB.Create(&branch).Error; err != nil {
			log.Printf("Error seeding branch %s: %v", branch.Code, err)
		}
	}

	log.Println("Branches seeded successfully")
}

// SeedUsers seeds the default admin account
func SeedUsers() {
	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("Users already seeded, skipping...")
		return
	}

	hashed, err := utils.HashPassword("admin123")
	if err != nil {
		log.Printf("Error hashing default password: %v", err)
		return
	}

	admin := models.User{
		Username: "admin",
		Password: hashed,
		Email:    "admin@brightpath.local",
		Role:     "admin",
		BranchID: 1,
		Status:   "active",
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		log.Printf("Error seeding admin user: %v", err)
		return
	}

	log.Println("Users seeded successfully")
}

// SeedCourses seeds a small starter catalog
func SeedCourses() {
	var count int64
	database.DB.Model(&models.Course{}).Count(&count)
	if count > 0 {
		log.Println("Courses already seeded, skipping...")
		return
	}

	courses := []models.Course{
		{
			BranchID:    1,
			Name:        "General English A1",
			Code:        "GE-A1",
			Description: "Beginner general English, 30 hours",
			Price:       decimal.NewFromInt(4500),
			MaxStudents: 12,
			Status:      models.CourseStatusActive,
		},
		{
			BranchID:    1,
			Name:        "Conversation B1",
			Code:        "CONV-B1",
			Description: "Intermediate conversation, 20 hours",
			Price:       decimal.NewFromInt(3800),
			MaxStudents: 8,
			Status:      models.CourseStatusActive,
		},
		{
			BranchID:    2,
			Name:        "Exam Preparation",
			Code:        "EXAM-01",
			Description: "Exam preparation intensive, 40 hours",
			Price:       decimal.NewFromInt(7900),
			MaxStudents: 10,
			Status:      models.CourseStatusPlanned,
		},
	}

	for _, course := range courses {
		if err := database.DB.Create(&course).Error; err != nil {
			log.Printf("Error seeding course %s: %v", course.Code, err)
		}
	}

	log.Println("Courses seeded successfully")
}

// SeedCafeteriaItems seeds the cafeteria menu
func SeedCafeteriaItems() {
	var count int64
	database.DB.Model(&models.CafeteriaItem{}).Count(&count)
	if count > 0 {
		log.Println("Cafeteria items already seeded, skipping...")
		return
	}

	items := []models.CafeteriaItem{
		{BranchID: 1, Name: "Americano", Category: "drinks", Price: decimal.NewFromInt(55), StockQuantity: 100, Active: true},
		{BranchID: 1, Name: "Thai Milk Tea", Category: "drinks", Price: decimal.NewFromInt(45), StockQuantity: 100, Active: true},
		{BranchID: 1, Name: "Chicken Sandwich", Category: "food", Price: decimal.NewFromInt(85), StockQuantity: 30, Active: true},
		{BranchID: 1, Name: "Butter Croissant", Category: "bakery", Price: decimal.NewFromInt(60), StockQuantity: 25, Active: true},
	}

	for _, item := range items {
		if err := database.DB.Create(&item).Error; err != nil {
			log.Printf("Error seeding cafeteria item %s: %v", item.Name, err)
		}
	}

	log.Println("Cafeteria items seeded successfully")
}

// SeedRooms seeds bookable desk rooms
func SeedRooms() {
	var count int64
	database.DB.Model(&models.Room{}).Count(&count)
	if count > 0 {
		log.Println("Rooms already seeded, skipping...")
		return
	}

	rooms := []models.Room{
		{BranchID: 1, RoomName: "Focus Room 1", Capacity: 2, HourlyRate: decimal.NewFromInt(120), Status: "available"},
		{BranchID: 1, RoomName: "Focus Room 2", Capacity: 4, HourlyRate: decimal.NewFromInt(180), Status: "available"},
		{BranchID: 2, RoomName: "Meeting Room A", Capacity: 8, HourlyRate: decimal.NewFromInt(300), Status: "available"},
	}

	for _, room := range rooms {
		if err := database.DB.Create(&room).Error; err != nil {
			log.Printf("Error seeding room %s: %v", room.RoomName, err)
		}
	}

	log.Println("Rooms seeded successfully")
}

// SeedSharedWorkspaces seeds the open co-working areas
func SeedSharedWorkspaces() {
	var count int64
	database.DB.Model(&models.SharedWorkspace{}).Count(&count)
	if count > 0 {
		log.Println("Shared workspaces already seeded, skipping...")
		return
	}

	workspaces := []models.SharedWorkspace{
		{BranchID: 1, Name: "Open Space Ground Floor", HourlyRate: decimal.NewFromInt(60), MaxCapacity: 20, Status: "available"},
		{BranchID: 2, Name: "Open Space Mezzanine", HourlyRate: decimal.NewFromInt(50), MaxCapacity: 12, Status: "available"},
	}

	for _, workspace := range workspaces {
		if err := database.DB.Create(&workspace).Error; err != nil {
			log.Printf("Error seeding shared workspace %s: %v", workspace.Name, err)
		}
	}

	log.Println("Shared workspaces seeded successfully")
}
