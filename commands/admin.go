package commands

import (
	"errors"
	"strings"

	"fanhub/models"
	"fanhub/services"
	"fanhub/tools"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/spf13/cobra"
)

type adminOptions struct {
	Name        string
	Email       string
	Password    string
	Phone       string
	Association string
	Superadmin  bool
}

var adminOpts adminOptions

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a staff account (and its association when missing)",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, database, err := bootstrap()
		if err != nil {
			return err
		}
		defer database.Close()

		member, err := createAdmin(database, adminOpts)
		if err != nil {
			color.Red("create-admin: %v", err)
			return err
		}
		color.Green("admin %s created (id %d, %s)", member.Email, member.ID, member.MembershipNumber)
		return nil
	},
}

func init() {
	f := createAdminCmd.Flags()
	f.StringVar(&adminOpts.Name, "name", "Admin", "display name")
	f.StringVar(&adminOpts.Email, "email", "", "login email")
	f.StringVar(&adminOpts.Password, "password", "", "login password (min 6 chars)")
	f.StringVar(&adminOpts.Phone, "phone", "", "phone number")
	f.StringVar(&adminOpts.Association, "association", "", "association name; created when no association has its slug")
	f.BoolVar(&adminOpts.Superadmin, "superadmin", false, "grant platform-wide rights")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
	_ = createAdminCmd.MarkFlagRequired("association")
}

func createAdmin(db *gorm.DB, opts adminOptions) (models.Member, error) {
	email := strings.ToLower(strings.TrimSpace(opts.Email))
	if !tools.ValidateEmail(email) {
		return models.Member{}, errors.New("invalid email")
	}
	if tools.CheckPassword(opts.Password) != "" {
		return models.Member{}, errors.New("password must have at least 6 characters")
	}
	slug := models.Slugify(opts.Association)
	if slug == "" {
		return models.Member{}, errors.New("association is required")
	}

	tx := db.Begin()

	var existing models.Member
	if err := tx.Where("email = ?", email).First(&existing).Error; err == nil {
		tx.Rollback()
		return models.Member{}, errors.New("email already registered")
	} else if !gorm.IsRecordNotFoundError(err) {
		tx.Rollback()
		return models.Member{}, err
	}

	var association models.Association
	err := tx.Where("slug = ?", slug).First(&association).Error
	if gorm.IsRecordNotFoundError(err) {
		association = models.Association{Name: strings.TrimSpace(opts.Association), Slug: slug, IsActive: true}
		err = tx.Create(&association).Error
	}
	if err != nil {
		tx.Rollback()
		return models.Member{}, err
	}

	hash, err := tools.HashPassword(opts.Password)
	if err != nil {
		tx.Rollback()
		return models.Member{}, err
	}

	memberType := models.MEMBER_TYPE_STAFF
	if opts.Superadmin {
		memberType = models.MEMBER_TYPE_SUPERADMIN
	}
	member := models.Member{
		AssociationID:    association.ID,
		Name:             strings.TrimSpace(opts.Name),
		Email:            email,
		Password:         hash,
		Phone:            strings.TrimSpace(opts.Phone),
		Status:           models.MEMBER_STATUS_AVAILABLE,
		Type:             memberType,
		Admin:            true,
		Tier:             models.MEMBER_TIER_BRONZE,
		ReferralCode:     tools.RandomCode(8),
		MembershipNumber: uuid.NewString(),
	}
	if err := tx.Create(&member).Error; err != nil {
		tx.Rollback()
		return models.Member{}, err
	}
	member.MembershipNumber = services.MembershipNumber(association, member.ID)
	if err := tx.Model(&member).UpdateColumn("membership_number", member.MembershipNumber).Error; err != nil {
		tx.Rollback()
		return models.Member{}, err
	}

	if err := tx.Commit().Error; err != nil {
		return models.Member{}, err
	}
	return member.Sanitized(), nil
}
