package joingraph

import "github.com/lostma-project/lostma-audit/pkg/models"

// LanguageColumn is the language attribute carried by language-bearing entities.
const LanguageColumn = "language_COLUMN"

func direct(target, column string) models.JoinStep {
	return models.JoinStep{Target: target, Kind: models.JoinDirect, Column: column}
}

func directOnTarget(target, column string) models.JoinStep {
	return models.JoinStep{Target: target, Kind: models.JoinDirect, Column: column, Owner: models.LinkOnTarget}
}

func multi(target, column string) models.JoinStep {
	return models.JoinStep{Target: target, Kind: models.JoinMulti, Column: column}
}

func multiOnSource(target, column string) models.JoinStep {
	return models.JoinStep{Target: target, Kind: models.JoinMulti, Column: column, Owner: models.LinkOnSource}
}

func reference(name, storage string, reviewStatus bool) models.EntityType {
	return models.EntityType{Name: name, StorageName: storage, HasReviewStatus: reviewStatus}
}

// DefaultEntities returns the LOSTMA record types and their join chains to the text entity.
func DefaultEntities() []models.EntityType {
	witnessToText := direct("text", "is_manifestation_of H-ID")
	partToWitness := multi("witness", "observed_on_pages H-ID")
	partToText := []models.JoinStep{partToWitness, witnessToText}

	return []models.EntityType{
		{
			Name: "text", StorageName: "TextTable", IsCorpus: true,
			LanguageColumn: LanguageColumn, HasReviewStatus: true,
		},
		{
			Name: "witness", StorageName: "Witness", IsCorpus: true, HasReviewStatus: true,
			Chain: []models.JoinStep{witnessToText},
		},
		{
			Name: "part", StorageName: "Part", IsCorpus: true, HasReviewStatus: true,
			Chain: partToText,
		},
		{
			Name: "document", StorageName: "DocumentTable", IsCorpus: true, HasReviewStatus: true,
			Chain: append([]models.JoinStep{directOnTarget("part", "is_inscribed_on H-ID")}, partToText...),
		},
		{
			Name: "digitization", StorageName: "Digitization", IsCorpus: true,
			Chain: append([]models.JoinStep{
				multiOnSource("document", "digitization_of H-ID"),
				directOnTarget("part", "is_inscribed_on H-ID"),
			}, partToText...),
		},
		{
			Name: "physDesc", StorageName: "PhysDesc", IsCorpus: true, HasReviewStatus: true,
			Chain: append([]models.JoinStep{directOnTarget("part", "physical_description H-ID")}, partToText...),
		},
		{
			Name: "stemma", StorageName: "Stemma", IsCorpus: true,
			Chain: []models.JoinStep{multi("text", "in_stemma H-ID")},
		},
		{
			Name: "scripta", StorageName: "Scripta", IsCorpus: true,
			LanguageColumn: LanguageColumn, HasReviewStatus: true,
		},
		reference("images", "Images", false),
		reference("story", "Story", true),
		reference("storyverse", "Storyverse", true),
		reference("genre", "Genre", true),
		reference("repository", "Repository", false),
		reference("footnote", "Footnote", false),
		reference("person", "Person", false),
		reference("organisation", "Organisation", false),
		reference("place", "Place", false),
		reference("book", "Book", false),
		reference("thesis", "Thesis", false),
		reference("heurist journal volume", "HeuristJournalVolume", false),
		reference("journal", "Journal", false),
		reference("journal article", "JournalArticle", false),
		reference("publication series", "PublicationSeries", false),
	}
}
