package routes

import (
	"academy_go/controllers"
	"academy_go/middleware"
	"academy_go/services"
	"academy_go/services/mail"
	"academy_go/services/websocket"
	"academy_go/storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps carries everything the HTTP layer is built from.
type Deps struct {
	DB            *gorm.DB
	Sessions      *services.SessionService
	Admins        *services.AdminService
	Grades        *services.GradeService
	Groups        *services.GroupService
	Teachers      *services.TeacherService
	Students      *services.StudentService
	Registrations *services.RegistrationService
	Health        *services.HealthService
	Objects       storage.ObjectStore
	UploadRules   services.UploadRules
	Mailer        mail.Mailer
	Hub           *websocket.Hub
	AdminInbox    string
}

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, d Deps) {
	authController := controllers.NewAuthController(d.Sessions)
	adminController := controllers.NewAdminController(d.Admins)
	gradeController := controllers.NewGradeController(d.Grades)
	groupController := controllers.NewGroupController(d.Groups)
	teacherController := controllers.NewTeacherController(d.Teachers)
	studentController := controllers.NewStudentController(d.Students)
	registrationController := controllers.NewRegistrationController(d.Registrations)
	programController := controllers.NewProgramController(d.DB, d.Objects, d.UploadRules)
	testimonialController := controllers.NewTestimonialController(d.DB)
	galleryController := controllers.NewGalleryController(d.DB, d.Objects, d.UploadRules)
	announcementController := controllers.NewAnnouncementController(d.DB)
	newsletterController := controllers.NewNewsletterController(d.DB)
	contactController := controllers.NewContactController(d.Mailer, d.Hub, d.AdminInbox)
	wsController := controllers.NewWebSocketController(d.Hub, d.Sessions)

	require := func(cap services.Capability) fiber.Handler {
		return middleware.RequireCapability(d.Sessions, cap)
	}

	api := app.Group("/api")

	// Authentication
	auth := api.Group("/auth")
	auth.Post("/admin/login", authController.AdminLogin)
	auth.Post("/teacher/login", authController.TeacherLogin)
	auth.Post("/logout", require(services.CapLogout), authController.Logout)
	auth.Get("/profile", require(services.CapViewOwnProfile), authController.GetProfile)

	// Superadmin: admin accounts
	admins := api.Group("/admins", require(services.CapManageAdmins))
	admins.Post("/", adminController.CreateAdmin)
	admins.Get("/", adminController.GetAdmins)
	admins.Delete("/:id", adminController.DeleteAdmin)

	// Grades
	grades := api.Group("/grades")
	grades.Get("/", gradeController.GetGrades)
	grades.Get("/:id", gradeController.GetGrade)
	grades.Post("/", require(services.CapManageGrades), gradeController.CreateGrade)
	grades.Put("/:id", require(services.CapManageGrades), gradeController.UpdateGrade)
	grades.Delete("/:id", require(services.CapManageGrades), gradeController.DeleteGrade)

	// Groups: listing is public, teachers see their own
	groups := api.Group("/groups")
	groups.Get("/", groupController.GetGroups)
	groups.Get("/mine", require(services.CapViewTeacherSelf), groupController.GetMyGroups)
	groups.Get("/:id", groupController.GetGroup)
	groups.Post("/", require(services.CapManageGroups), groupController.CreateGroup)
	groups.Put("/:id", require(services.CapManageGroups), groupController.UpdateGroup)
	groups.Put("/:id/schedule", require(services.CapManageGroups), groupController.UpdateSchedule)
	groups.Delete("/:id", require(services.CapManageGroups), groupController.DeleteGroup)

	// Teachers: self-service routes are registered before /:id
	teachers := api.Group("/teachers")
	teachers.Get("/", teacherController.GetTeachers)
	teachers.Get("/me", require(services.CapViewTeacherSelf), teacherController.GetMe)
	teachers.Put("/me", require(services.CapEditTeacherSelf), teacherController.UpdateMe)
	teachers.Post("/me/photo", require(services.CapEditTeacherSelf), teacherController.UploadPhoto)
	teachers.Post("/me/gallery", require(services.CapEditTeacherSelf), teacherController.AddGalleryImage)
	teachers.Delete("/me/gallery/:imageId", require(services.CapEditTeacherSelf), teacherController.RemoveGalleryImage)
	teachers.Get("/:id", teacherController.GetTeacher)
	teachers.Post("/", require(services.CapManageTeachers), teacherController.CreateTeacher)
	teachers.Put("/:id", require(services.CapManageTeachers), teacherController.UpdateTeacher)
	teachers.Delete("/:id", require(services.CapManageTeachers), teacherController.DeleteTeacher)

	// Students
	students := api.Group("/students", require(services.CapManageStudents))
	students.Post("/", studentController.CreateStudent)
	students.Get("/", studentController.GetStudents)
	students.Get("/:id", studentController.GetStudent)
	students.Put("/:id", studentController.UpdateStudent)
	students.Post("/:id/groups", studentController.AddGroup)
	students.Delete("/:id/groups/:groupId", studentController.RemoveGroup)
	students.Delete("/:id", studentController.DeleteStudent)

	// Registrations: submission is public
	registrations := api.Group("/registrations")
	registrations.Post("/", registrationController.CreateRegistration)
	registrations.Get("/", require(services.CapManageRegistrations), registrationController.GetRegistrations)
	registrations.Get("/export", require(services.CapManageRegistrations), registrationController.ExportRegistrations)
	registrations.Get("/:id", require(services.CapManageRegistrations), registrationController.GetRegistration)
	registrations.Patch("/:id/status", require(services.CapManageRegistrations), registrationController.UpdateStatus)
	registrations.Delete("/:id", require(services.CapManageRegistrations), registrationController.DeleteRegistration)

	// Content
	programs := api.Group("/programs")
	programs.Get("/", programController.GetPrograms)
	programs.Get("/:id", programController.GetProgram)
	programs.Post("/", require(services.CapManageContent), programController.CreateProgram)
	programs.Put("/:id", require(services.CapManageContent), programController.UpdateProgram)
	programs.Post("/:id/image", require(services.CapManageContent), programController.UploadImage)
	programs.Delete("/:id", require(services.CapManageContent), programController.DeleteProgram)

	testimonials := api.Group("/testimonials")
	testimonials.Get("/", testimonialController.GetApprovedTestimonials)
	testimonials.Post("/", testimonialController.SubmitTestimonial)
	testimonials.Get("/all", require(services.CapManageContent), testimonialController.GetAllTestimonials)
	testimonials.Patch("/:id/approve", require(services.CapManageContent), testimonialController.ApproveTestimonial)
	testimonials.Delete("/:id", require(services.CapManageContent), testimonialController.DeleteTestimonial)

	gallery := api.Group("/gallery")
	gallery.Get("/", galleryController.GetImages)
	gallery.Post("/", require(services.CapManageContent), galleryController.UploadImage)
	gallery.Delete("/:id", require(services.CapManageContent), galleryController.DeleteImage)

	announcements := api.Group("/announcements")
	announcements.Get("/", announcementController.GetPublishedAnnouncements)
	announcements.Post("/", require(services.CapManageContent), announcementController.CreateAnnouncement)
	announcements.Put("/:id", require(services.CapManageContent), announcementController.UpdateAnnouncement)
	announcements.Delete("/:id", require(services.CapManageContent), announcementController.DeleteAnnouncement)

	newsletter := api.Group("/newsletter")
	newsletter.Post("/subscribe", newsletterController.Subscribe)
	newsletter.Get("/subscribers", require(services.CapManageContent), newsletterController.GetSubscribers)
	newsletter.Delete("/subscribers/:id", require(services.CapManageContent), newsletterController.DeleteSubscriber)

	api.Post("/contact", contactController.Submit)

	// Live admin feed
	api.Get("/ws/stats", require(services.CapViewAdminFeed), wsController.GetWebSocketStats)
	app.Use("/ws", wsController.Upgrade)
	app.Get("/ws", wsController.WebSocketHandler())

	if d.Health != nil {
		app.Get("/health", controllers.NewHealthController(d.Health).GetHealthStatus)
	}
}
