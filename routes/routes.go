package routes

import (
	"brightpath_go/controllers"
	"brightpath_go/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App) {
	// Initialize controllers
	authController := &controllers.AuthController{}
	branchController := &controllers.BranchController{}
	studentController := &controllers.StudentController{}
	courseController := &controllers.CourseController{}
	registrationController := controllers.NewRegistrationController()
	cafeteriaController := controllers.NewCafeteriaController()
	bookingController := controllers.NewBookingController()
	sharedBookingController := controllers.NewSharedBookingController()
	paymentController := controllers.NewPaymentController()
	notificationController := &controllers.NotificationController{}

	// API group
	api := app.Group("/api")

	// Authentication routes (no middleware)
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)
	auth.Get("/profile", middleware.JWTMiddleware(), authController.GetProfile)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware())

	// User management (admin/owner only)
	users := protected.Group("/users")
	users.Post("/", middleware.RequireOwnerOrAdmin(), authController.Register)

	// Branch management
	branches := protected.Group("/branches")
	branches.Get("/", branchController.GetBranches)
	branches.Get("/:id", branchController.GetBranch)
	branches.Post("/", middleware.RequireOwnerOrAdmin(), branchController.CreateBranch)
	branches.Put("/:id", middleware.RequireOwnerOrAdmin(), branchController.UpdateBranch)

	// Student management
	students := protected.Group("/students")
	students.Get("/", middleware.RequireStaffOrAbove(), studentController.GetStudents)
	students.Get("/:id", middleware.RequireStaffOrAbove(), studentController.GetStudent)
	students.Post("/", middleware.RequireStaffOrAbove(), studentController.CreateStudent)
	students.Put("/:id", middleware.RequireStaffOrAbove(), studentController.UpdateStudent)
	students.Delete("/:id", middleware.RequireOwnerOrAdmin(), studentController.DeactivateStudent)

	// Course management
	courses := protected.Group("/courses")
	courses.Get("/", courseController.GetCourses)
	courses.Get("/:id", courseController.GetCourse)
	courses.Post("/", middleware.RequireOwnerOrAdmin(), courseController.CreateCourse)
	courses.Put("/:id", middleware.RequireOwnerOrAdmin(), courseController.UpdateCourse)

	// Course registrations
	registrations := protected.Group("/registrations", middleware.RequireStaffOrAbove())
	registrations.Get("/", registrationController.GetRegistrations)
	registrations.Get("/:id", registrationController.GetRegistration)
	registrations.Post("/", registrationController.Enroll)
	registrations.Post("/:id/payments", registrationController.RecordPayment)
	registrations.Put("/:id/status", registrationController.UpdateStatus)
	registrations.Post("/:id/withdraw", registrationController.Withdraw)
	registrations.Post("/:id/certificate", registrationController.IssueCertificate)

	// Cafeteria catalog and orders
	cafeteria := protected.Group("/cafeteria", middleware.RequireStaffOrAbove())
	cafeteria.Get("/items", cafeteriaController.GetItems)
	cafeteria.Post("/items", middleware.RequireOwnerOrAdmin(), cafeteriaController.CreateItem)
	cafeteria.Put("/items/:id", middleware.RequireOwnerOrAdmin(), cafeteriaController.UpdateItem)
	cafeteria.Get("/orders", cafeteriaController.GetOrders)
	cafeteria.Get("/orders/:id", cafeteriaController.GetOrder)
	cafeteria.Post("/orders", cafeteriaController.CreateOrder)
	cafeteria.Put("/orders/:id/status", cafeteriaController.UpdateOrderStatus)
	cafeteria.Post("/orders/:id/cancel", cafeteriaController.CancelOrder)
	cafeteria.Post("/orders/:id/payments", cafeteriaController.RecordOrderPayment)

	// Rooms and desk bookings
	rooms := protected.Group("/rooms", middleware.RequireStaffOrAbove())
	rooms.Get("/", bookingController.GetRooms)
	rooms.Post("/", middleware.RequireOwnerOrAdmin(), bookingController.CreateRoom)
	rooms.Post("/:id/availability", bookingController.CheckAvailability)

	bookings := protected.Group("/bookings", middleware.RequireStaffOrAbove())
	bookings.Get("/", bookingController.GetBookings)
	bookings.Get("/:id", bookingController.GetBooking)
	bookings.Post("/", bookingController.CreateBooking)
	bookings.Post("/:id/confirm", bookingController.ConfirmBooking)
	bookings.Post("/:id/check-in", bookingController.CheckIn)
	bookings.Post("/:id/check-out", bookingController.CheckOut)
	bookings.Post("/:id/cancel", bookingController.CancelBooking)
	bookings.Post("/:id/charges", bookingController.AddCharge)
	bookings.Post("/:id/payments", bookingController.RecordBookingPayment)

	// Shared workspaces and their bookings
	workspaces := protected.Group("/workspaces", middleware.RequireStaffOrAbove())
	workspaces.Get("/", sharedBookingController.GetWorkspaces)
	workspaces.Post("/", middleware.RequireOwnerOrAdmin(), sharedBookingController.CreateWorkspace)
	workspaces.Post("/:id/availability", sharedBookingController.CheckAvailability)

	sharedBookings := protected.Group("/shared-bookings", middleware.RequireStaffOrAbove())
	sharedBookings.Get("/", sharedBookingController.GetBookings)
	sharedBookings.Get("/:id", sharedBookingController.GetBooking)
	sharedBookings.Post("/", sharedBookingController.CreateBooking)
	sharedBookings.Post("/:id/confirm", sharedBookingController.ConfirmBooking)
	sharedBookings.Post("/:id/check-in", sharedBookingController.CheckIn)
	sharedBookings.Post("/:id/check-out", sharedBookingController.CheckOut)
	sharedBookings.Post("/:id/cancel", sharedBookingController.CancelBooking)
	sharedBookings.Post("/:id/payments", sharedBookingController.RecordBookingPayment)

	// Payment ledger
	payments := protected.Group("/payments", middleware.RequireStaffOrAbove())
	payments.Get("/", paymentController.GetPayments)
	payments.Post("/", paymentController.PostPayment)
	payments.Get("/receipts/:ref", paymentController.GetReceipt)
	payments.Get("/audit", middleware.RequireOwnerOrAdmin(), paymentController.RunAudit)

	// Notifications (authenticated users)
	notifications := protected.Group("/notifications")
	notifications.Get("/", notificationController.GetNotifications)
	notifications.Put("/:id/read", notificationController.MarkAsRead)
}
