package employee

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/database"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/email"
	"golang.org/x/crypto/bcrypt"
)

// OnboardingOptions feeds new-account defaults and the welcome email.
type OnboardingOptions struct {
	DefaultLeaveBalance int
	LoginURL            string
	CompanyName         string
}

type EmployeeServiceImpl struct {
	tx                  database.Transactor
	employeeRepo        employee.EmployeeRepository
	emailService        email.EmailService
	notificationService notification.Service
	opts                OnboardingOptions
}

func NewEmployeeService(
	tx database.Transactor,
	employeeRepo employee.EmployeeRepository,
	emailService email.EmailService,
	notificationService notification.Service,
	opts OnboardingOptions,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		tx:                  tx,
		employeeRepo:        employeeRepo,
		emailService:        emailService,
		notificationService: notificationService,
		opts:                opts,
	}
}

func (s *EmployeeServiceImpl) List(ctx context.Context, actor user.Principal, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	if !actor.Can(user.PermissionUserView) {
		return employee.ListEmployeeResponse{}, user.ErrInsufficientPermissions
	}
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	employees, total, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		responses = append(responses, employee.NewEmployeeResponse(e))
	}
	return employee.ListEmployeeResponse{
		Employees: responses,
		Total:     total,
		Page:      filter.Window.Page,
		Limit:     filter.Window.Limit,
	}, nil
}

func (s *EmployeeServiceImpl) Get(ctx context.Context, actor user.Principal, id string) (employee.EmployeeResponse, error) {
	if !actor.Can(user.PermissionUserView) && actor.EmployeeID != id {
		return employee.EmployeeResponse{}, user.ErrInsufficientPermissions
	}
	e, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return employee.NewEmployeeResponse(e), nil
}

func (s *EmployeeServiceImpl) Create(ctx context.Context, actor user.Principal, req employee.CreateEmployeeRequest) (employee.CreateEmployeeResponse, error) {
	if !actor.Can(user.PermissionUserManage) {
		return employee.CreateEmployeeResponse{}, user.ErrInsufficientPermissions
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return employee.CreateEmployeeResponse{}, err
	}

	role, _ := user.ParseRole(req.Role)
	if role.IsAdmin() && !actor.Can(user.PermissionUserManageAdmin) {
		return employee.CreateEmployeeResponse{}, user.ErrAdminMasterRequired
	}

	password := req.Password
	generated := false
	if password == "" {
		var err error
		password, err = temporaryPassword()
		if err != nil {
			return employee.CreateEmployeeResponse{}, fmt.Errorf("failed to generate temporary password: %w", err)
		}
		generated = true
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return employee.CreateEmployeeResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	balance := s.opts.DefaultLeaveBalance
	if req.LeaveBalance != nil {
		balance = *req.LeaveBalance
	}

	var created employee.Employee
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.employeeRepo.LockHierarchy(txCtx); err != nil {
			return err
		}

		exists, err := s.employeeRepo.ExistsByEmail(txCtx, req.Email, "")
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return employee.ErrEmailExists
		}

		if req.ReportingTo != nil {
			if err := s.checkManagerExists(txCtx, *req.ReportingTo); err != nil {
				return err
			}
		}
		if req.AssignedAdminID != nil {
			if err := s.checkAssignedAdmin(txCtx, *req.AssignedAdminID); err != nil {
				return err
			}
		}

		created, err = s.employeeRepo.Create(txCtx, employee.Employee{
			Name:            req.Name,
			Email:           req.Email,
			PersonalEmail:   req.PersonalEmail,
			PasswordHash:    string(hash),
			Role:            role,
			Department:      req.Department,
			Designation:     req.Designation,
			Phone:           req.Phone,
			LeaveBalance:    balance,
			ManagerID:       req.ReportingTo,
			AssignedAdminID: req.AssignedAdminID,
			Status:          employee.StatusActive,
		})
		if err != nil {
			return fmt.Errorf("failed to create employee: %w", err)
		}
		return nil
	})
	if err != nil {
		return employee.CreateEmployeeResponse{}, err
	}

	// Reload for the joined manager name.
	if reloaded, err := s.employeeRepo.GetByID(ctx, created.ID); err == nil {
		created = reloaded
	}

	resp := employee.CreateEmployeeResponse{
		EmployeeResponse: employee.NewEmployeeResponse(created),
		EmailSent:        s.sendOnboarding(created, password, generated),
	}

	if s.notificationService != nil {
		err := s.notificationService.QueueNotification(ctx, notification.CreateNotificationRequest{
			RecipientID: created.ID,
			SenderID:    &actor.EmployeeID,
			Type:        notification.TypeAccountCreated,
			Title:       "Welcome aboard",
			Message:     fmt.Sprintf("Your %s account was created. Please change your password after signing in.", strings.ToLower(string(created.Role))),
		})
		if err != nil {
			slog.Warn("failed to queue welcome notification", "employee_id", created.ID, "error", err)
		}
	}

	return resp, nil
}

// sendOnboarding mails the login details to the personal address when one is
// known, otherwise to the work address.
func (s *EmployeeServiceImpl) sendOnboarding(e employee.Employee, password string, generated bool) bool {
	if s.emailService == nil || !s.emailService.Enabled() {
		return false
	}
	to := e.Email
	if e.PersonalEmail != nil {
		to = *e.PersonalEmail
	}

	data := email.OnboardingData{
		Name:        e.Name,
		LoginEmail:  e.Email,
		Role:        string(e.Role),
		Department:  e.Department,
		LoginURL:    s.opts.LoginURL,
		CompanyName: s.opts.CompanyName,
	}
	if generated {
		data.TemporaryPassword = password
	}
	if err := s.emailService.SendOnboarding(to, data); err != nil {
		slog.Error("failed to send onboarding email", "employee_id", e.ID, "error", err)
		return false
	}
	return true
}

func (s *EmployeeServiceImpl) Update(ctx context.Context, actor user.Principal, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	self := actor.EmployeeID == id
	isAdmin := actor.Can(user.PermissionUserManage)
	if !isAdmin {
		if !self {
			return employee.EmployeeResponse{}, employee.ErrCannotEditOthers
		}
		if req.TouchesRestrictedFields() {
			return employee.EmployeeResponse{}, employee.ErrRestrictedField
		}
	}

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.employeeRepo.LockHierarchy(txCtx); err != nil {
			return err
		}

		e, err := s.employeeRepo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to get employee: %w", err)
		}

		if isAdmin && !actor.Can(user.PermissionUserManageAdmin) {
			if e.Role.IsAdmin() && !self {
				return user.ErrAdminMasterRequired
			}
			if req.Role != nil {
				if role, _ := user.ParseRole(*req.Role); role.IsAdmin() && role != e.Role {
					return user.ErrAdminMasterRequired
				}
			}
		}

		if req.Name != nil {
			e.Name = strings.TrimSpace(*req.Name)
		}
		if req.Phone != nil {
			e.Phone = strings.TrimSpace(*req.Phone)
		}
		if req.PersonalEmail != nil {
			e.PersonalEmail = blankToNil(strings.ToLower(*req.PersonalEmail))
		}
		if req.Email != nil {
			addr := strings.ToLower(strings.TrimSpace(*req.Email))
			exists, err := s.employeeRepo.ExistsByEmail(txCtx, addr, e.ID)
			if err != nil {
				return fmt.Errorf("failed to check email: %w", err)
			}
			if exists {
				return employee.ErrEmailExists
			}
			e.Email = addr
		}
		if req.Role != nil {
			e.Role, _ = user.ParseRole(*req.Role)
		}
		if req.Department != nil {
			e.Department = strings.TrimSpace(*req.Department)
		}
		if req.Designation != nil {
			e.Designation = strings.TrimSpace(*req.Designation)
		}
		if req.LeaveBalance != nil {
			e.LeaveBalance = *req.LeaveBalance
		}
		if req.Status != nil {
			e.Status = employee.Status(*req.Status)
		}
		if req.ReportingTo != nil {
			managerID := blankToNil(*req.ReportingTo)
			if managerID != nil {
				if err := s.checkManagerExists(txCtx, *managerID); err != nil {
					return err
				}
				if err := employee.CheckReportingLine(txCtx, e.ID, *managerID, s.employeeRepo.GetManagerID); err != nil {
					return err
				}
			}
			e.ManagerID = managerID
		}
		if req.AssignedAdminID != nil {
			adminID := blankToNil(*req.AssignedAdminID)
			if adminID != nil {
				if err := s.checkAssignedAdmin(txCtx, *adminID); err != nil {
					return err
				}
			}
			e.AssignedAdminID = adminID
		}

		if err := s.employeeRepo.Update(txCtx, e); err != nil {
			return fmt.Errorf("failed to update employee: %w", err)
		}
		return nil
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	updated, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return employee.NewEmployeeResponse(updated), nil
}

func (s *EmployeeServiceImpl) Delete(ctx context.Context, actor user.Principal, id string) error {
	if !actor.Can(user.PermissionUserManage) {
		return user.ErrInsufficientPermissions
	}
	if actor.EmployeeID == id {
		return employee.ErrCannotDeleteSelf
	}

	return s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.employeeRepo.LockHierarchy(txCtx); err != nil {
			return err
		}
		e, err := s.employeeRepo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to get employee: %w", err)
		}
		if e.Role.IsAdmin() && !actor.Can(user.PermissionUserManageAdmin) {
			return user.ErrAdminMasterRequired
		}

		reports, err := s.employeeRepo.CountDirectReports(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to count direct reports: %w", err)
		}
		if reports > 0 {
			return employee.ErrEmployeeHasDirectReports
		}

		if err := s.employeeRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete employee: %w", err)
		}
		return nil
	})
}

func (s *EmployeeServiceImpl) checkManagerExists(ctx context.Context, managerID string) error {
	if _, err := s.employeeRepo.GetByID(ctx, managerID); err != nil {
		if isNotFound(err) {
			return employee.ErrManagerNotFound
		}
		return fmt.Errorf("failed to get reporting manager: %w", err)
	}
	return nil
}

func (s *EmployeeServiceImpl) checkAssignedAdmin(ctx context.Context, adminID string) error {
	admin, err := s.employeeRepo.GetByID(ctx, adminID)
	if err != nil {
		if isNotFound(err) {
			return employee.ErrAssignedAdminInvalid
		}
		return fmt.Errorf("failed to get assigned admin: %w", err)
	}
	if !admin.Role.IsAdmin() {
		return employee.ErrAssignedAdminInvalid
	}
	return nil
}

// temporaryPassword returns 16 URL-safe characters.
func temporaryPassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func blankToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func isNotFound(err error) bool {
	return errors.Is(err, employee.ErrEmployeeNotFound)
}
