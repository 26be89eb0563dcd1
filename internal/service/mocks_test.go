package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/itinerary-maker/api/internal/dto"
	"github.com/octobees/itinerary-maker/api/internal/entity"
	"github.com/octobees/itinerary-maker/api/internal/repository"
)

var (
	testNow   = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	testAdmin = uuid.MustParse("00000000-0000-0000-0000-00000000a001")
)

func fixedNow() time.Time { return testNow }

type mockUsersRepository struct {
	findByEmail func(ctx context.Context, email string) (*entity.User, error)
	findByID    func(ctx context.Context, id uuid.UUID) (*entity.User, error)
	findByIDs   func(ctx context.Context, ids []uuid.UUID) ([]entity.User, error)
	create      func(ctx context.Context, user entity.User) error
	list        func(ctx context.Context) ([]entity.User, error)
	update      func(ctx context.Context, user entity.User) error
	softDelete  func(ctx context.Context, id, by uuid.UUID, at time.Time) error
}

func (m *mockUsersRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.findByEmail != nil {
		return m.findByEmail(ctx, email)
	}
	return nil, errors.New("FindByEmail not implemented")
}

func (m *mockUsersRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if m.findByID != nil {
		return m.findByID(ctx, id)
	}
	return nil, errors.New("FindByID not implemented")
}

func (m *mockUsersRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.User, error) {
	if m.findByIDs != nil {
		return m.findByIDs(ctx, ids)
	}
	return nil, errors.New("FindByIDs not implemented")
}

func (m *mockUsersRepository) Create(ctx context.Context, user entity.User) error {
	if m.create != nil {
		return m.create(ctx, user)
	}
	return errors.New("Create not implemented")
}

func (m *mockUsersRepository) List(ctx context.Context) ([]entity.User, error) {
	if m.list != nil {
		return m.list(ctx)
	}
	return nil, errors.New("List not implemented")
}

func (m *mockUsersRepository) Update(ctx context.Context, user entity.User) error {
	if m.update != nil {
		return m.update(ctx, user)
	}
	return errors.New("Update not implemented")
}

func (m *mockUsersRepository) SoftDelete(ctx context.Context, id, by uuid.UUID, at time.Time) error {
	if m.softDelete != nil {
		return m.softDelete(ctx, id, by, at)
	}
	return errors.New("SoftDelete not implemented")
}

type mockRolesRepository struct {
	create          func(ctx context.Context, role entity.AccountRole) error
	findByID        func(ctx context.Context, id uuid.UUID) (*entity.AccountRole, error)
	findByShortName func(ctx context.Context, shortName string) (*entity.AccountRole, error)
	list            func(ctx context.Context) ([]entity.AccountRole, error)
	softDelete      func(ctx context.Context, id, by uuid.UUID, at time.Time) error
}

func (m *mockRolesRepository) Create(ctx context.Context, role entity.AccountRole) error {
	if m.create != nil {
		return m.create(ctx, role)
	}
	return errors.New("Create not implemented")
}

func (m *mockRolesRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.AccountRole, error) {
	if m.findByID != nil {
		return m.findByID(ctx, id)
	}
	return nil, errors.New("FindByID not implemented")
}

func (m *mockRolesRepository) FindByShortName(ctx context.Context, shortName string) (*entity.AccountRole, error) {
	if m.findByShortName != nil {
		return m.findByShortName(ctx, shortName)
	}
	return nil, errors.New("FindByShortName not implemented")
}

func (m *mockRolesRepository) List(ctx context.Context) ([]entity.AccountRole, error) {
	if m.list != nil {
		return m.list(ctx)
	}
	return nil, errors.New("List not implemented")
}

func (m *mockRolesRepository) SoftDelete(ctx context.Context, id, by uuid.UUID, at time.Time) error {
	if m.softDelete != nil {
		return m.softDelete(ctx, id, by, at)
	}
	return errors.New("SoftDelete not implemented")
}

type mockCompaniesRepository struct {
	create          func(ctx context.Context, company entity.Company) error
	update          func(ctx context.Context, company entity.Company) error
	findByID        func(ctx context.Context, id uuid.UUID) (*entity.Company, error)
	list            func(ctx context.Context, filter dto.ListFilter) ([]entity.Company, error)
	listBySelection func(ctx context.Context, selection entity.Selection) ([]entity.Company, error)
	softDelete      func(ctx context.Context, id, by uuid.UUID, at time.Time) error
	bulk            func(ctx context.Context, actor uuid.UUID, records []repository.BulkUpsertCompanyInput) (repository.BulkUpsertResult, error)
}

func (m *mockCompaniesRepository) Create(ctx context.Context, company entity.Company) error {
	if m.create != nil {
		return m.create(ctx, company)
	}
	return errors.New("Create not implemented")
}

func (m *mockCompaniesRepository) Update(ctx context.Context, company entity.Company) error {
	if m.update != nil {
		return m.update(ctx, company)
	}
	return errors.New("Update not implemented")
}

func (m *mockCompaniesRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	if m.findByID != nil {
		return m.findByID(ctx, id)
	}
	return nil, errors.New("FindByID not implemented")
}

func (m *mockCompaniesRepository) List(ctx context.Context, filter dto.ListFilter) ([]entity.Company, error) {
	if m.list != nil {
		return m.list(ctx, filter)
	}
	return nil, errors.New("List not implemented")
}

func (m *mockCompaniesRepository) ListBySelection(ctx context.Context, selection entity.Selection) ([]entity.Company, error) {
	if m.listBySelection != nil {
		return m.listBySelection(ctx, selection)
	}
	return nil, errors.New("ListBySelection not implemented")
}

func (m *mockCompaniesRepository) SoftDelete(ctx context.Context, id, by uuid.UUID, at time.Time) error {
	if m.softDelete != nil {
		return m.softDelete(ctx, id, by, at)
	}
	return errors.New("SoftDelete not implemented")
}

func (m *mockCompaniesRepository) BulkUpsertCompanies(ctx context.Context, actor uuid.UUID, records []repository.BulkUpsertCompanyInput) (repository.BulkUpsertResult, error) {
	if m.bulk != nil {
		return m.bulk(ctx, actor, records)
	}
	return repository.BulkUpsertResult{}, errors.New("BulkUpsertCompanies not implemented")
}

type mockNumbersRepository struct {
	create        func(ctx context.Context, number entity.CompanyContactNumber) error
	update        func(ctx context.Context, number entity.CompanyContactNumber) error
	findByID      func(ctx context.Context, id uuid.UUID) (*entity.CompanyContactNumber, error)
	listByCompany func(ctx context.Context, companyID uuid.UUID) ([]entity.CompanyContactNumber, error)
	primary       func(ctx context.Context, companyIDs []uuid.UUID) (map[uuid.UUID]string, error)
	softDelete    func(ctx context.Context, id, by uuid.UUID, at time.Time) error
}

func (m *mockNumbersRepository) Create(ctx context.Context, number entity.CompanyContactNumber) error {
	if m.create != nil {
		return m.create(ctx, number)
	}
	return errors.New("Create not implemented")
}

func (m *mockNumbersRepository) Update(ctx context.Context, number entity.CompanyContactNumber) error {
	if m.update != nil {
		return m.update(ctx, number)
	}
	return errors.New("Update not implemented")
}

func (m *mockNumbersRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.CompanyContactNumber, error) {
	if m.findByID != nil {
		return m.findByID(ctx, id)
	}
	return nil, errors.New("FindByID not implemented")
}

func (m *mockNumbersRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]entity.CompanyContactNumber, error) {
	if m.listByCompany != nil {
		return m.listByCompany(ctx, companyID)
	}
	return nil, errors.New("ListByCompany not implemented")
}

func (m *mockNumbersRepository) PrimaryForCompanies(ctx context.Context, companyIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	if m.primary != nil {
		return m.primary(ctx, companyIDs)
	}
	return map[uuid.UUID]string{}, nil
}

func (m *mockNumbersRepository) SoftDelete(ctx context.Context, id, by uuid.UUID, at time.Time) error {
	if m.softDelete != nil {
		return m.softDelete(ctx, id, by, at)
	}
	return errors.New("SoftDelete not implemented")
}

type mockSocialRepository struct {
	create     func(ctx context.Context, profile entity.UserSocialMedia) error
	findByID   func(ctx context.Context, id uuid.UUID) (*entity.UserSocialMedia, error)
	listByUser func(ctx context.Context, userID uuid.UUID, publicOnly bool) ([]entity.UserSocialMedia, error)
	softDelete func(ctx context.Context, id, by uuid.UUID, at time.Time) error
}

func (m *mockSocialRepository) Create(ctx context.Context, profile entity.UserSocialMedia) error {
	if m.create != nil {
		return m.create(ctx, profile)
	}
	return errors.New("Create not implemented")
}

func (m *mockSocialRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.UserSocialMedia, error) {
	if m.findByID != nil {
		return m.findByID(ctx, id)
	}
	return nil, errors.New("FindByID not implemented")
}

func (m *mockSocialRepository) ListByUser(ctx context.Context, userID uuid.UUID, publicOnly bool) ([]entity.UserSocialMedia, error) {
	if m.listByUser != nil {
		return m.listByUser(ctx, userID, publicOnly)
	}
	return nil, errors.New("ListByUser not implemented")
}

func (m *mockSocialRepository) SoftDelete(ctx context.Context, id, by uuid.UUID, at time.Time) error {
	if m.softDelete != nil {
		return m.softDelete(ctx, id, by, at)
	}
	return errors.New("SoftDelete not implemented")
}

type mockLookupsRepository struct {
	listValues          func(ctx context.Context, d entity.Dimension) ([]entity.LookupValue, error)
	listDelegatedValues func(ctx context.Context, roleID uuid.UUID, d entity.Dimension) ([]entity.LookupValue, error)
}

func (m *mockLookupsRepository) ListValues(ctx context.Context, d entity.Dimension) ([]entity.LookupValue, error) {
	if m.listValues != nil {
		return m.listValues(ctx, d)
	}
	return nil, errors.New("ListValues not implemented")
}

func (m *mockLookupsRepository) ListDelegatedValues(ctx context.Context, roleID uuid.UUID, d entity.Dimension) ([]entity.LookupValue, error) {
	if m.listDelegatedValues != nil {
		return m.listDelegatedValues(ctx, roleID, d)
	}
	return nil, errors.New("ListDelegatedValues not implemented")
}

type mockItinerariesRepository struct {
	create       func(ctx context.Context, itinerary entity.Itinerary) error
	findByID     func(ctx context.Context, id uuid.UUID) (*entity.Itinerary, error)
	setExportKey func(ctx context.Context, id uuid.UUID, key string, by uuid.UUID, at time.Time) error
}

func (m *mockItinerariesRepository) Create(ctx context.Context, itinerary entity.Itinerary) error {
	if m.create != nil {
		return m.create(ctx, itinerary)
	}
	return errors.New("Create not implemented")
}

func (m *mockItinerariesRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Itinerary, error) {
	if m.findByID != nil {
		return m.findByID(ctx, id)
	}
	return nil, errors.New("FindByID not implemented")
}

func (m *mockItinerariesRepository) SetExportKey(ctx context.Context, id uuid.UUID, key string, by uuid.UUID, at time.Time) error {
	if m.setExportKey != nil {
		return m.setExportKey(ctx, id, key, by, at)
	}
	return errors.New("SetExportKey not implemented")
}

var (
	_ repository.UsersRepository          = (*mockUsersRepository)(nil)
	_ repository.AccountRolesRepository   = (*mockRolesRepository)(nil)
	_ repository.CompaniesRepository      = (*mockCompaniesRepository)(nil)
	_ repository.ContactNumbersRepository = (*mockNumbersRepository)(nil)
	_ repository.SocialMediaRepository    = (*mockSocialRepository)(nil)
	_ repository.LookupsRepository        = (*mockLookupsRepository)(nil)
	_ repository.ItinerariesRepository    = (*mockItinerariesRepository)(nil)
)
