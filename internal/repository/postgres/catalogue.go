package postgres

import (
	"context"

	"github.com/serbe/rugo-sub000/internal/model"
	"github.com/serbe/rugo-sub000/internal/registry"
	"github.com/serbe/rugo-sub000/internal/repository"
)

// Register adds every catalogue kind and list query to reg.
// Users are not part of the catalogue; they go through the user administration path.
func Register(reg *registry.Registry) {
	var (
		certificates = CertificateRepo{}
		companies    = CompanyRepo{}
		contacts     = ContactRepo{}
		departments  = NewNamedRepo(TableDepartments)
		educations   = EducationRepo{}
		kinds        = KindRepo{}
		posts        = PostRepo{}
		practices    = PracticeRepo{}
		ranks        = NewNamedRepo(TableRanks)
		scopes       = NewNamedRepo(TableScopes)
		sirens       = SirenRepo{}
		sirenTypes   = SirenTypeRepo{}
	)

	reg.Add("Certificate", registry.Entity[model.Certificate](certificates))
	reg.Add("Company", registry.Entity[model.Company](companies))
	reg.Add("Contact", registry.Entity[model.Contact](contacts))
	reg.Add("Department", registry.Entity[model.Department](departments))
	reg.Add("Education", registry.Entity[model.Education](educations))
	reg.Add("Kind", registry.Entity[model.Kind](kinds))
	reg.Add("Post", registry.Entity[model.Post](posts))
	reg.Add("Practice", registry.Entity[model.Practice](practices))
	reg.Add("Rank", registry.Entity[model.Rank](ranks))
	reg.Add("Scope", registry.Entity[model.Scope](scopes))
	reg.Add("Siren", registry.Entity[model.Siren](sirens))
	reg.Add("SirenType", registry.Entity[model.SirenType](sirenTypes))

	reg.AddList("CertificateList", registry.List(certificates.List))
	reg.AddList("CompanyList", registry.List(companies.List))
	reg.AddList("CompanySelect", registry.List(companies.Select))
	reg.AddList("ContactList", registry.List(contacts.List))
	reg.AddList("ContactSelect", registry.List(contacts.Select))
	reg.AddList("DepartmentList", registry.List(departments.List))
	reg.AddList("DepartmentSelect", registry.List(departments.Select))
	reg.AddList("EducationList", registry.List(educations.List))
	reg.AddList("EducationNear", registry.List(educations.Near))
	reg.AddList("KindList", registry.List(kinds.List))
	reg.AddList("KindSelect", registry.List(kinds.Select))
	reg.AddList("PostList", registry.List(posts.List))
	reg.AddList("PostSelect", registry.List(func(ctx context.Context, q repository.Querier) ([]model.SelectItem, error) {
		return posts.Select(ctx, q, false)
	}))
	reg.AddList("PostGoSelect", registry.List(func(ctx context.Context, q repository.Querier) ([]model.SelectItem, error) {
		return posts.Select(ctx, q, true)
	}))
	reg.AddList("PracticeList", registry.List(practices.List))
	reg.AddList("PracticeNear", registry.List(practices.Near))
	reg.AddList("RankList", registry.List(ranks.List))
	reg.AddList("RankSelect", registry.List(ranks.Select))
	reg.AddList("ScopeList", registry.List(scopes.List))
	reg.AddList("ScopeSelect", registry.List(scopes.Select))
	reg.AddList("SirenList", registry.List(sirens.List))
	reg.AddList("SirenTypeList", registry.List(sirenTypes.List))
	reg.AddList("SirenTypeSelect", registry.List(sirenTypes.Select))
}
